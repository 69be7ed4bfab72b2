package models

import "strings"

const (
	VariantResize = "resize"
	VariantBlur   = "blur"

	// BlurNamespace prefixes blur derivative keys.
	BlurNamespace = "blur"
)

// DerivativeKey joins the non-empty parts of (namespace, size, key) with "/".
// It is both the destination object key and the token audience.
func DerivativeKey(namespace, size, key string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{namespace, size, key} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// BlurhashResult is the blur response body. Dimensions are strings on the wire.
type BlurhashResult struct {
	Blurhash            string `json:"blurhash"`
	BlurhashData        string `json:"blurhash_data"`
	BlurhashAvg         string `json:"blurhash_avg"`
	BlurhashThumbnail   string `json:"blurhash_thumbnail"`
	BlurhashImageWidth  string `json:"blurhash_image_width"`
	BlurhashImageHeight string `json:"blurhash_image_height"`
}

// Metadata returns r as object metadata, keyed by the JSON field names.
func (r BlurhashResult) Metadata() map[string]string {
	return map[string]string{
		"blurhash":              r.Blurhash,
		"blurhash_data":         r.BlurhashData,
		"blurhash_avg":          r.BlurhashAvg,
		"blurhash_thumbnail":    r.BlurhashThumbnail,
		"blurhash_image_width":  r.BlurhashImageWidth,
		"blurhash_image_height": r.BlurhashImageHeight,
	}
}

// Complete reports whether the hash and its preview are both present.
func (r BlurhashResult) Complete() bool {
	return r.Blurhash != "" && r.BlurhashData != ""
}
