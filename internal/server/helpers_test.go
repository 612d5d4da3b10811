package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/image-text-search/internal/ingest"
	"github.com/ironsheep/image-text-search/internal/library"
	"github.com/ironsheep/image-text-search/internal/ocr"
	"github.com/ironsheep/image-text-search/internal/store"
)

// textEngine returns the same transcript for every image.
type textEngine struct{ text string }

func (e textEngine) Recognize(context.Context, []byte) (string, error) { return e.text, nil }
func (e textEngine) Close() error { return nil }

type staticInfo struct{ info ocr.OCRInfo }

func (s staticInfo) Info(context.Context) ocr.OCRInfo { return s.info }

// newTestServer builds a server over an in-memory library whose engine
// always recognizes text.
func newTestServer(t *testing.T, text string) *Server {
	t.Helper()
	acq := ocr.AcquirerFunc(func(context.Context) (ocr.Engine, error) {
		return textEngine{text: text}, nil
	})
	lib, err := library.Open(context.Background(), store.NewMemory(), ingest.NewPipeline(acq, ingest.Options{}, nil), nil)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	return New(lib, staticInfo{ocr.OCRInfo{Available: true, Backend: "test", Languages: []string{"eng"}}}, nil, "1.2.3")
}

// createTestImageFile writes a solid PNG named name into a temp dir.
func createTestImageFile(t *testing.T, name string, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs tools/call and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeToolResult unwraps the MCP text content into v.
func decodeToolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
}

func writeBytes(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
