package ingest

import (
	"errors"
	"fmt"
)

// Kind classifies a batch failure.
type Kind int

const (
	// KindEngineAcquisition means no OCR engine could be started; no file was processed.
	KindEngineAcquisition Kind = iota + 1
	// KindRecognition means OCR failed on a specific file.
	KindRecognition
	// KindMalformedInput means a file payload could not be decoded as an image.
	KindMalformedInput
)

// Sentinels matched by errors.Is against an *Error of the same Kind.
var (
	ErrEngineAcquisition = errors.New("ocr engine acquisition failed")
	ErrRecognition       = errors.New("text recognition failed")
	ErrMalformedInput    = errors.New("malformed input")
)

func (k Kind) String() string {
	switch k {
	case KindEngineAcquisition:
		return "engine acquisition failure"
	case KindRecognition:
		return "recognition failure"
	case KindMalformedInput:
		return "malformed input"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindEngineAcquisition:
		return ErrEngineAcquisition
	case KindRecognition:
		return ErrRecognition
	case KindMalformedInput:
		return ErrMalformedInput
	default:
		return nil
	}
}

// Error is returned by Process when a batch fails. File is empty for
// engine acquisition failures.
type Error struct {
	Kind Kind
	File string
	Err  error
}

func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.File, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if s := e.Kind.sentinel(); s != nil {
		return []error{s, e.Err}
	}
	return []error{e.Err}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}
