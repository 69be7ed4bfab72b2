package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-derivative/internal/services/sizespec"
)

// Resize produces the derivative for spec. A single dimension keeps the
// aspect ratio; both dimensions cover-fill around the center. The result is
// never larger than the source in either dimension.
func (e *Engine) Resize(data []byte, spec sizespec.Spec) (*Output, error) {
	if !spec.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrTransform, sizespec.ErrInvalidSize)
	}

	img, format, err := e.decode(data)
	if err != nil {
		return nil, err
	}

	resized := e.resizeImage(img, spec)

	buffer := &bytes.Buffer{}
	outputFormat, err := e.encodeImage(buffer, resized, format)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode image: %w", ErrTransform, err)
	}

	b := resized.Bounds()
	return &Output{
		Data:        buffer.Bytes(),
		ContentType: contentTypeOf(outputFormat),
		Format:      outputFormat,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

func (e *Engine) resizeImage(img image.Image, spec sizespec.Spec) image.Image {
	w, h := targetSize(img.Bounds().Dx(), img.Bounds().Dy(), spec)

	switch {
	case w == img.Bounds().Dx() && h == img.Bounds().Dy():
		return imaging.Clone(img)
	case spec.Width > 0 && spec.Height > 0:
		return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	default:
		return imaging.Resize(img, w, h, imaging.Lanczos)
	}
}

// targetSize returns the output dimensions for a source of srcW x srcH.
func targetSize(srcW, srcH int, spec sizespec.Spec) (int, int) {
	switch {
	case spec.Width > 0 && spec.Height > 0:
		// Shrink the box uniformly until it fits inside the source.
		scale := 1.0
		if r := float64(srcW) / float64(spec.Width); r < scale {
			scale = r
		}
		if r := float64(srcH) / float64(spec.Height); r < scale {
			scale = r
		}
		return atLeastOne(float64(spec.Width) * scale), atLeastOne(float64(spec.Height) * scale)
	case spec.Width > 0:
		if spec.Width >= srcW {
			return srcW, srcH
		}
		return spec.Width, atLeastOne(float64(srcH) * float64(spec.Width) / float64(srcW))
	case spec.Height > 0:
		if spec.Height >= srcH {
			return srcW, srcH
		}
		return atLeastOne(float64(srcW) * float64(spec.Height) / float64(srcH)), spec.Height
	}
	return srcW, srcH
}

func atLeastOne(v float64) int {
	n := int(v + 0.5)
	if n < 1 {
		return 1
	}
	return n
}
