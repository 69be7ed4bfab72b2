package processor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/buckket/go-blurhash"
	"github.com/buckket/go-blurhash/base83"
	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-derivative/internal/services/sizespec"
)

// BlurResult is a blurhash placeholder computed from a resized source.
type BlurResult struct {
	Hash           string
	AverageColor   string
	PreviewDataURI string
	Width          int
	Height         int
}

// BlurEncode resizes the source to spec without enlarging it and encodes
// a blurhash with a PNG preview rendered from the hash.
func (e *Engine) BlurEncode(data []byte, spec sizespec.Spec) (*BlurResult, error) {
	if !spec.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrTransform, sizespec.ErrInvalidSize)
	}

	img, _, err := e.decode(data)
	if err != nil {
		return nil, err
	}

	// Forces an alpha channel regardless of the source model.
	nrgba := imaging.Clone(e.resizeImage(img, spec))
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()

	xComp, yComp := 4, 3
	if h > w {
		xComp, yComp = 3, 4
	}

	hash, err := blurhash.Encode(xComp, yComp, nrgba)
	if err != nil {
		return nil, fmt.Errorf("%w: blurhash encode: %w", ErrTransform, err)
	}

	avg, err := averageColor(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransform, err)
	}

	preview, err := e.previewDataURI(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransform, err)
	}

	return &BlurResult{
		Hash:           hash,
		AverageColor:   avg,
		PreviewDataURI: preview,
		Width:          w,
		Height:         h,
	}, nil
}

// averageColor reads the DC component of a hash as "r,g,b".
func averageColor(hash string) (string, error) {
	if len(hash) < 6 {
		return "", fmt.Errorf("blurhash %q too short", hash)
	}
	v, err := base83.Decode(hash[2:6])
	if err != nil {
		return "", fmt.Errorf("blurhash average color: %w", err)
	}
	return fmt.Sprintf("%d,%d,%d", v>>16, (v>>8)&255, v&255), nil
}

func (e *Engine) previewDataURI(hash string) (string, error) {
	img, err := blurhash.Decode(hash, e.previewSize, e.previewSize, 1)
	if err != nil {
		return "", fmt.Errorf("blurhash decode: %w", err)
	}

	buffer := &bytes.Buffer{}
	if err := png.Encode(buffer, img); err != nil {
		return "", fmt.Errorf("preview encode: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buffer.Bytes()), nil
}
