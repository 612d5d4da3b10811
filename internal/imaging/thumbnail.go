package imaging

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Thumbnail size limits in pixels.
const (
	DefaultThumbnailSize = 256
	MinThumbnailSize     = 16
	MaxThumbnailSize     = 1024
)

// Thumbnail decodes data and returns a PNG that fits within size x size,
// preserving aspect ratio. Images already inside the box are re-encoded at
// their own size, never enlarged.
func Thumbnail(data []byte, size int) ([]byte, error) {
	if size < MinThumbnailSize || size > MaxThumbnailSize {
		return nil, fmt.Errorf("thumbnail size %d outside [%d, %d]", size, MinThumbnailSize, MaxThumbnailSize)
	}

	img, _, err := DecodePayload(data)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() > size || b.Dy() > size {
		img = imaging.Fit(img, size, size, imaging.Lanczos)
	}
	return EncodePNG(img)
}
