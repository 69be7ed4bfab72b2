package utils

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

func init() {
	mime.AddExtensionType(".webp", "image/webp")
	mime.AddExtensionType(".heic", "image/heic")
	mime.AddExtensionType(".heif", "image/heif")
}

// ContentTypeFor picks the content type of a stored object: the explicit
// value when given, then the key's extension, then the payload itself.
func ContentTypeFor(key string, data []byte, explicit string) string {
	if explicit != "" {
		return explicit
	}

	if ext := strings.ToLower(path.Ext(key)); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}

	if len(data) > 0 {
		return mimetype.Detect(data).String()
	}

	return defaultContentType
}

// IsValidImageType checks if content type is a valid image type
func IsValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/bmp",
		"image/tiff",
	}

	ct := strings.ToLower(contentType)
	for _, validType := range validTypes {
		if strings.Contains(ct, validType) {
			return true
		}
	}
	return false
}

// JoinURL appends an object key to a base URL.
func JoinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
