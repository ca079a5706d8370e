package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"
)

// Resize decodes an image, scales it down to maxWidth keeping the aspect
// ratio, and re-encodes it in the format given by ext. Narrower images are
// re-encoded unchanged. A maxWidth of zero disables scaling.
func Resize(r io.Reader, ext string, maxWidth int) (*bytes.Buffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	}

	out := &bytes.Buffer{}
	switch ext {
	case ".jpeg", ".jpg":
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 85})
	case ".png":
		err = png.Encode(out, img)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return out, nil
}
