package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Decoders beyond the ones imaging registers.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
)

// ErrTransform wraps every failure to decode, transform or encode an image.
var ErrTransform = errors.New("transform failed")

const (
	DefaultJPEGQuality = 85
	DefaultPreviewSize = 32
	// DefaultMaxPixels caps the decoded canvas at 16383x16383.
	DefaultMaxPixels int64 = 268402689
)

// Engine turns source image bytes into derivatives. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	maxFileSize int64
	maxPixels   int64
	jpegQuality int
	previewSize int
}

// Output is an encoded resize result.
type Output struct {
	Data        []byte
	ContentType string
	Format      string
	Width       int
	Height      int
}

func NewEngine(maxFileSize int64, jpegQuality, previewSize int) *Engine {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	if previewSize <= 0 {
		previewSize = DefaultPreviewSize
	}
	return &Engine{
		maxFileSize: maxFileSize,
		maxPixels:   DefaultMaxPixels,
		jpegQuality: jpegQuality,
		previewSize: previewSize,
	}
}

// WithMaxPixels returns a copy of the engine that refuses sources whose
// declared width*height exceeds n. n <= 0 keeps the default.
func (e *Engine) WithMaxPixels(n int64) *Engine {
	c := *e
	if n > 0 {
		c.maxPixels = n
	}
	return &c
}

// decode validates the payload and decodes it with EXIF orientation applied.
// The returned format is the registered decoder name ("jpeg", "png", ...).
func (e *Engine) decode(data []byte) (image.Image, string, error) {
	if err := e.Validate(data); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrTransform, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode image: %w", ErrTransform, err)
	}

	// Checked on the header so oversized canvases are never allocated.
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > e.maxPixels {
		return nil, "", fmt.Errorf("%w: %w: %dx%d exceeds %d pixels",
			ErrTransform, ErrImageTooLarge, cfg.Width, cfg.Height, e.maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode image: %w", ErrTransform, err)
	}

	return img, format, nil
}
