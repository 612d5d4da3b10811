package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig controls how Tesseract engines are started.
type TesseractConfig struct {
	// Languages are Tesseract language codes. Defaults to ["eng"].
	Languages []string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty means the system default (TESSDATA_PREFIX or the install location).
	TessdataPrefix string

	// PageSegMode is a Tesseract page segmentation mode. Zero keeps the default (PSM_AUTO).
	PageSegMode int
}

// Tesseract is an Acquirer backed by gosseract.
type Tesseract struct {
	cfg           TesseractConfig
	clientFactory func() *gosseract.Client
}

// NewTesseract returns a Tesseract acquirer for the given configuration.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	return &Tesseract{cfg: cfg, clientFactory: gosseract.NewClient}
}

// Acquire starts a gosseract client, applies the configuration and runs a
// warm-up recognition so initialization failures surface here.
//
// The returned engine owns the client; the caller must Close it. On error no
// client is left open.
func (t *Tesseract) Acquire(ctx context.Context) (Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := t.clientFactory()
	if err := t.configure(client); err != nil {
		client.Close()
		return nil, err
	}

	blank, err := warmupImage()
	if err != nil {
		client.Close()
		return nil, err
	}
	if err := client.SetImageFromBytes(blank); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set warm-up image: %w", err)
	}
	if _, err := client.Text(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize tesseract: %w", err)
	}

	return &tesseractEngine{client: client}, nil
}

func (t *Tesseract) configure(client *gosseract.Client) error {
	if t.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataPrefix); err != nil {
			return fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(t.cfg.Languages...); err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	if t.cfg.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(t.cfg.PageSegMode)); err != nil {
			return fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	return nil
}

type tesseractEngine struct {
	client *gosseract.Client
	once   sync.Once
	err    error
}

// Recognize runs OCR on an encoded image. Tesseract calls are not
// interruptible, so ctx is only checked before the call starts.
func (e *tesseractEngine) Recognize(ctx context.Context, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

func (e *tesseractEngine) Close() error {
	e.once.Do(func() {
		e.err = e.client.Close()
	})
	return e.err
}

var (
	warmupOnce  sync.Once
	warmupBytes []byte
	warmupErr   error
)

// warmupImage returns a small white PNG used to force Tesseract initialization.
func warmupImage() ([]byte, error) {
	warmupOnce.Do(func() {
		img := image.NewGray(image.Rect(0, 0, 32, 32))
		for i := range img.Pix {
			img.Pix[i] = uint8(color.White.Y >> 8)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			warmupErr = fmt.Errorf("failed to encode warm-up image: %w", err)
			return
		}
		warmupBytes = buf.Bytes()
	})
	return warmupBytes, warmupErr
}

// TesseractVersion returns the installed Tesseract version.
func TesseractVersion() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// OCRInfo contains information about the OCR subsystem.
type OCRInfo struct {
	Available bool     `json:"available" yaml:"available"`
	Version   string   `json:"version,omitempty" yaml:"version,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
	Backend   string   `json:"backend" yaml:"backend"`
	Languages []string `json:"languages" yaml:"languages"`
}

// Info reports whether an engine can be acquired with this configuration.
// It acquires and immediately releases one engine.
func (t *Tesseract) Info(ctx context.Context) OCRInfo {
	info := OCRInfo{
		Backend:   "gosseract",
		Languages: t.cfg.Languages,
		Version:   TesseractVersion(),
	}
	eng, err := t.Acquire(ctx)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	eng.Close()
	info.Available = true
	return info
}
