package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// darkBackgroundThreshold is the HSL lightness below which a background is
	// treated as dark and the image is inverted before OCR.
	darkBackgroundThreshold = 0.45

	// ocrContrast is the bild contrast change applied before recognition.
	ocrContrast = 0.3

	// borderSamples caps how many pixels are sampled along each edge.
	borderSamples = 64
)

// Preprocess returns a copy of img prepared for OCR: grayscale, inverted when
// the background is dark, then contrast-stretched. img is not modified.
func Preprocess(img image.Image) image.Image {
	var out image.Image = effect.Grayscale(img)
	if BackgroundLightness(out) < darkBackgroundThreshold {
		out = effect.Invert(out)
	}
	return adjust.Contrast(out, ocrContrast)
}

// BackgroundLightness estimates the background lightness of img in [0,1] as
// the mean HSL lightness of pixels sampled along its border. Fully
// transparent pixels are ignored; an image with no opaque border pixels
// reports 1 (light).
func BackgroundLightness(img image.Image) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 1
	}

	var sum float64
	var n int
	sample := func(x, y int) {
		c, ok := colorful.MakeColor(img.At(x, y))
		if !ok {
			return
		}
		_, _, l := c.Hsl()
		sum += l
		n++
	}

	stepX := max(1, b.Dx()/borderSamples)
	for x := b.Min.X; x < b.Max.X; x += stepX {
		sample(x, b.Min.Y)
		sample(x, b.Max.Y-1)
	}
	stepY := max(1, b.Dy()/borderSamples)
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		sample(b.Min.X, y)
		sample(b.Max.X-1, y)
	}

	if n == 0 {
		return 1
	}
	return sum / float64(n)
}

// EncodePNG encodes img as PNG for handing to an OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
