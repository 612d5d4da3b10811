package ocr

import (
	"context"
	"strings"
)

// Engine recognizes text from encoded image bytes (PNG, JPEG, GIF, BMP, TIFF).
//
// Close releases the underlying recognizer. Implementations must tolerate
// repeated Close calls.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Close() error
}

// Acquirer starts OCR engines.
type Acquirer interface {
	Acquire(ctx context.Context) (Engine, error)
}

// AcquirerFunc adapts a function to the Acquirer interface.
type AcquirerFunc func(ctx context.Context) (Engine, error)

// Acquire calls f(ctx).
func (f AcquirerFunc) Acquire(ctx context.Context) (Engine, error) {
	return f(ctx)
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Normalize turns a raw OCR transcript into its stored form: every newline
// becomes a single space and the result is lower-cased. Other whitespace is
// left as recognized.
func Normalize(raw string) string {
	return strings.ToLower(newlineReplacer.Replace(raw))
}
