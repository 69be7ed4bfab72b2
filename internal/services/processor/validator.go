package processor

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phambaophuc/image-derivative/pkg/utils"
)

var (
	ErrEmptyImage       = errors.New("empty image payload")
	ErrImageTooLarge    = errors.New("image exceeds maximum size")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// Validate rejects payloads that are empty, too large or not an image
// type the engine can decode.
func (e *Engine) Validate(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyImage
	}

	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(data), e.maxFileSize)
	}

	if mt := mimetype.Detect(data); !utils.IsValidImageType(mt.String()) {
		return fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	return nil
}
