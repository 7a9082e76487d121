package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"

	// Register decoders for the formats uploads may arrive in.
	_ "image/gif"
	_ "image/png"
)

// NormalizeImage decodes an uploaded image, shrinks it to fit within the
// given bounding box and re-encodes it as JPEG. Re-encoding strips whatever
// metadata the upload carried.
func NormalizeImage(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf, nil
}
