package imaging

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/ironsheep/image-text-search/internal/testutil"
)

func TestDecodePayload(t *testing.T) {
	img := testutil.Solid(40, 20, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name       string
		data       []byte
		wantFormat string
	}{
		{"png", testutil.PNG(t, img), "png"},
		{"jpeg", testutil.JPEG(t, img), "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format, err := DecodePayload(tt.data)
			if err != nil {
				t.Fatalf("DecodePayload failed: %v", err)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %q, want %q", format, tt.wantFormat)
			}
			if got.Bounds().Dx() != 40 || got.Bounds().Dy() != 20 {
				t.Errorf("unexpected dimensions: got %dx%d, want 40x20", got.Bounds().Dx(), got.Bounds().Dy())
			}
		})
	}
}

func TestDecodePayload_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"text", []byte("definitely not an image")},
		{"truncated png", testutil.PNG(t, testutil.Solid(10, 10, color.White))[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodePayload(tt.data)
			if !errors.Is(err, ErrUndecodable) {
				t.Errorf("DecodePayload error = %v, want ErrUndecodable", err)
			}
		})
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"png":  "image/png",
		"jpeg": "image/jpeg",
		"gif":  "image/gif",
		"bmp":  "image/bmp",
		"tiff": "image/tiff",
		"webp": "image/webp",
		"heic": "application/octet-stream",
		"":     "application/octet-stream",
	}
	for format, want := range tests {
		if got := MIMEType(format); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestDataURI_RoundTrip(t *testing.T) {
	payload := testutil.PNG(t, testutil.Solid(5, 5, color.Black))

	uri := DataURI(payload, "png")
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected data URI prefix: %.40s", uri)
	}

	mime, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI failed: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if !bytes.Equal(data, payload) {
		t.Error("round-tripped payload differs from original")
	}
}

func TestParseDataURI_Invalid(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"no scheme", "image/png;base64,AAAA"},
		{"no comma", "data:image/png;base64"},
		{"not base64", "data:image/png,rawbytes"},
		{"bad base64", "data:image/png;base64,!!!"},
		{"blob url", "blob:http://localhost/123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseDataURI(tt.uri); !errors.Is(err, ErrInvalidDataURI) {
				t.Errorf("ParseDataURI(%q) error = %v, want ErrInvalidDataURI", tt.uri, err)
			}
		})
	}
}

func TestParseDataURI_DefaultMIME(t *testing.T) {
	mime, data, err := ParseDataURI("data:;base64,aGk=")
	if err != nil {
		t.Fatalf("ParseDataURI failed: %v", err)
	}
	if mime != "text/plain" || string(data) != "hi" {
		t.Errorf("got (%q, %q), want (text/plain, hi)", mime, data)
	}
}
