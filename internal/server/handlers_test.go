package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-text-search/internal/domain"
	"github.com/ironsheep/image-text-search/internal/ocr"
)

func ingestFiles(t *testing.T, s *Server, paths ...string) ingestResult {
	t.Helper()
	var res ingestResult
	decodeToolResult(t, callTool(t, s, "images_ingest", map[string]interface{}{"paths": paths}), &res)
	return res
}

func TestHandleImagesIngest(t *testing.T) {
	s := newTestServer(t, "Hello\nWORLD")
	a := createTestImageFile(t, "a.png", color.White)
	b := createTestImageFile(t, "b.png", color.Black)

	res := ingestFiles(t, s, a, b)

	if len(res.Added) != 2 {
		t.Fatalf("added: got %d, want 2", len(res.Added))
	}
	if res.Added[0].Name != "a.png" || res.Added[1].Name != "b.png" {
		t.Errorf("names: got %s, %s", res.Added[0].Name, res.Added[1].Name)
	}
	if res.Added[0].Text != "hello world" {
		t.Errorf("text: got %q, want %q", res.Added[0].Text, "hello world")
	}
	if res.Added[0].Content != "" {
		t.Error("ingest results should not carry content")
	}
	if res.Total != 2 {
		t.Errorf("total: got %d, want 2", res.Total)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped: got %v", res.Skipped)
	}
}

func TestHandleImagesIngest_SkipsDuplicates(t *testing.T) {
	s := newTestServer(t, "x")
	a := createTestImageFile(t, "same.png", color.White)
	ingestFiles(t, s, a)

	// Same base name from another directory.
	again := createTestImageFile(t, "same.png", color.Black)
	res := ingestFiles(t, s, again)

	if len(res.Added) != 0 {
		t.Errorf("added: got %d, want 0", len(res.Added))
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "same.png" {
		t.Errorf("skipped: got %v", res.Skipped)
	}
	if res.Total != 1 {
		t.Errorf("total: got %d, want 1", res.Total)
	}
}

func TestHandleImagesIngest_Errors(t *testing.T) {
	s := newTestServer(t, "x")
	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := writeBytes(bad, []byte("not an image")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args interface{}
		want string
	}{
		{"no paths", map[string]interface{}{"paths": []string{}}, "at least one file"},
		{"missing file", map[string]interface{}{"paths": []string{"/nonexistent/file.png"}}, "failed to read"},
		{"malformed image", map[string]interface{}{"paths": []string{bad}}, "malformed input"},
		{"wrong type", map[string]interface{}{"paths": "a.png"}, "cannot unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "images_ingest", tt.args)
			if resp.Error == nil {
				t.Fatal("expected an error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("code: got %d, want -32000", resp.Error.Code)
			}
			if data, _ := resp.Error.Data.(string); !strings.Contains(data, tt.want) {
				t.Errorf("data: got %q, want it to contain %q", data, tt.want)
			}
		})
	}

	if s.lib.Len() != 0 {
		t.Errorf("failed ingests must not change the collection, got %d images", s.lib.Len())
	}
}

func TestHandleImagesIngest_ProgressNotifications(t *testing.T) {
	s := newTestServer(t, "x")
	var out bytes.Buffer
	s.enc = json.NewEncoder(&out)

	a := createTestImageFile(t, "a.png", color.White)
	params, _ := json.Marshal(map[string]interface{}{
		"name":      "images_ingest",
		"arguments": map[string]interface{}{"paths": []string{a}},
		"_meta":     map[string]interface{}{"progressToken": "tok-1"},
	})
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 7, Method: "tools/call", Params: params})
	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected progress notifications, got %q", out.String())
	}

	last := 0.0
	for _, line := range lines {
		var n struct {
			Method string `json:"method"`
			Params struct {
				ProgressToken string  `json:"progressToken"`
				Progress      float64 `json:"progress"`
			} `json:"params"`
		}
		if err := json.Unmarshal([]byte(line), &n); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		if n.Method != "notifications/progress" || n.Params.ProgressToken != "tok-1" {
			t.Errorf("unexpected notification %s", line)
		}
		if n.Params.Progress < last {
			t.Errorf("progress went backwards: %v after %v", n.Params.Progress, last)
		}
		last = n.Params.Progress
	}
	if last != 100 {
		t.Errorf("final progress: got %v, want 100", last)
	}
}

func TestHandleImagesSearch(t *testing.T) {
	s := newTestServer(t, "Invoice #42")
	ingestFiles(t, s, createTestImageFile(t, "inv.png", color.White))

	tests := []struct {
		query string
		want  int
	}{
		{"INVOICE", 1},
		{"#42", 1},
		{"receipt", 0},
		{"   ", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var res searchResult
			decodeToolResult(t, callTool(t, s, "images_search", map[string]interface{}{"query": tt.query}), &res)
			if res.Count != tt.want || len(res.Results) != tt.want {
				t.Errorf("count: got %d (%d results), want %d", res.Count, len(res.Results), tt.want)
			}
			for _, r := range res.Results {
				if r.Content != "" {
					t.Error("search results should not carry content")
				}
			}
		})
	}
}

func TestHandleImagesListGetDeleteClear(t *testing.T) {
	s := newTestServer(t, "text")
	ingestFiles(t, s,
		createTestImageFile(t, "one.png", color.White),
		createTestImageFile(t, "two.png", color.Black),
	)

	var list listResult
	decodeToolResult(t, callTool(t, s, "images_list", nil), &list)
	if list.Count != 2 || list.Images[0].Name != "one.png" {
		t.Fatalf("list: got %+v", list)
	}
	id := list.Images[0].ID

	var img domain.ProcessedImage
	decodeToolResult(t, callTool(t, s, "images_get", map[string]interface{}{"id": id}), &img)
	if img.ID != id || img.Content != "" {
		t.Errorf("get without content: got %+v", img)
	}

	decodeToolResult(t, callTool(t, s, "images_get", map[string]interface{}{"id": id, "include_content": true}), &img)
	if !strings.HasPrefix(img.Content, "data:image/png;base64,") {
		t.Errorf("get with content: content %q", img.Content)
	}

	if resp := callTool(t, s, "images_get", map[string]interface{}{"id": "missing"}); resp.Error == nil {
		t.Error("get of a missing id should fail")
	}

	var deleted map[string]interface{}
	decodeToolResult(t, callTool(t, s, "images_delete", map[string]interface{}{"id": id}), &deleted)
	if deleted["deleted"] != id || deleted["total"] != float64(1) {
		t.Errorf("delete: got %v", deleted)
	}

	resp := callTool(t, s, "images_delete", map[string]interface{}{"id": id})
	if resp.Error == nil {
		t.Fatal("deleting twice should fail")
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "not found") {
		t.Errorf("delete error: got %q", data)
	}

	var cleared map[string]interface{}
	decodeToolResult(t, callTool(t, s, "images_clear", nil), &cleared)
	if cleared["cleared"] != float64(1) {
		t.Errorf("clear: got %v", cleared)
	}
	if s.lib.Len() != 0 {
		t.Errorf("collection not empty after clear")
	}
}

func TestHandleOCRInfo(t *testing.T) {
	s := newTestServer(t, "")
	var info ocr.OCRInfo
	decodeToolResult(t, callTool(t, s, "ocr_info", nil), &info)
	if !info.Available || info.Backend != "test" {
		t.Errorf("ocr_info: got %+v", info)
	}

	s.ocr = nil
	var missing map[string]interface{}
	decodeToolResult(t, callTool(t, s, "ocr_info", nil), &missing)
	if missing["available"] != false {
		t.Errorf("ocr_info without backend: got %v", missing)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer(t, "")

	resp := callTool(t, s, "image_crop", nil)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("unknown tool: got %+v", resp.Error)
	}

	resp = s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("invalid params: got %+v", resp.Error)
	}
}

func TestMustMarshalJSON(t *testing.T) {
	if got := mustMarshalJSON(map[string]int{"a": 1}); !strings.Contains(got, `"a": 1`) {
		t.Errorf("got %s", got)
	}
	if got := mustMarshalJSON(make(chan int)); got != "" {
		t.Errorf("unmarshalable value: got %q, want empty", got)
	}
}
