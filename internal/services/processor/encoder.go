package processor

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// encodeImage writes img in the source format and returns the format used.
// There is no pure-Go WebP encoder, so WebP sources come back as PNG.
func (e *Engine) encodeImage(w io.Writer, img image.Image, format string) (string, error) {
	switch format {
	case "jpeg":
		return "jpeg", imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(e.jpegQuality))
	case "png", "webp":
		return "png", imaging.Encode(w, img, imaging.PNG)
	case "gif":
		return "gif", imaging.Encode(w, img, imaging.GIF)
	case "bmp":
		return "bmp", imaging.Encode(w, img, imaging.BMP)
	case "tiff":
		return "tiff", imaging.Encode(w, img, imaging.TIFF)
	default:
		return "jpeg", imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(e.jpegQuality))
	}
}

func contentTypeOf(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}
