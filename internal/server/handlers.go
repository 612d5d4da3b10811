package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ironsheep/image-text-search/internal/domain"
	"github.com/ironsheep/image-text-search/internal/ingest"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "images_ingest", "images_search").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

func (p *ToolCallParams) progressToken() interface{} {
	if p.Meta == nil {
		return nil
	}
	return p.Meta.ProgressToken
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, &params)
	if err != nil {
		s.log.Warn("Tool execution failed",
			zap.String("tool", params.Name),
			zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, params *ToolCallParams) (interface{}, error) {
	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch params.Name {
	case "images_ingest":
		return s.handleImagesIngest(ctx, args, params.progressToken())
	case "images_search":
		return s.handleImagesSearch(args)
	case "images_list":
		return s.handleImagesList()
	case "images_get":
		return s.handleImagesGet(args)
	case "images_delete":
		return s.handleImagesDelete(ctx, args)
	case "images_clear":
		return s.handleImagesClear(ctx)
	case "ocr_info":
		return s.handleOCRInfo(ctx)
	default:
		return nil, fmt.Errorf("unknown tool: %s", params.Name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Collection Handlers ===

type imagesIngestArgs struct {
	Paths []string `json:"paths"`
}

type ingestResult struct {
	Added   []domain.ProcessedImage `json:"added"`
	Skipped []string                `json:"skipped"`
	Total   int                     `json:"total"`
}

func (s *Server) handleImagesIngest(ctx context.Context, args json.RawMessage, token interface{}) (interface{}, error) {
	var a imagesIngestArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must contain at least one file")
	}

	files := make([]domain.RawFile, 0, len(a.Paths))
	for _, p := range a.Paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, domain.RawFile{Name: filepath.Base(p), Data: data})
	}

	var onProgress ingest.ProgressFunc
	if token != nil {
		onProgress = func(percent float64, stage string) {
			s.notify("notifications/progress", map[string]interface{}{
				"progressToken": token,
				"progress":      percent,
				"total":         100,
				"message":       stage,
			})
		}
	}

	res, err := s.lib.Add(ctx, files, onProgress)
	if err != nil {
		return nil, err
	}
	return &ingestResult{
		Added:   domain.StripContent(res.Added),
		Skipped: res.Skipped,
		Total:   s.lib.Len(),
	}, nil
}

type imagesSearchArgs struct {
	Query string `json:"query"`
}

type searchResult struct {
	Query   string                  `json:"query"`
	Count   int                     `json:"count"`
	Results []domain.ProcessedImage `json:"results"`
}

func (s *Server) handleImagesSearch(args json.RawMessage) (interface{}, error) {
	var a imagesSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	results := s.lib.Search(a.Query)
	return &searchResult{
		Query:   a.Query,
		Count:   len(results),
		Results: domain.StripContent(results),
	}, nil
}

type listResult struct {
	Count  int                     `json:"count"`
	Images []domain.ProcessedImage `json:"images"`
}

func (s *Server) handleImagesList() (interface{}, error) {
	images := s.lib.List()
	return &listResult{
		Count:  len(images),
		Images: domain.StripContent(images),
	}, nil
}

type imagesGetArgs struct {
	ID             string `json:"id"`
	IncludeContent bool   `json:"include_content"`
}

func (s *Server) handleImagesGet(args json.RawMessage) (interface{}, error) {
	var a imagesGetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, ok := s.lib.Get(a.ID)
	if !ok {
		return nil, fmt.Errorf("image not found: %s", a.ID)
	}
	if !a.IncludeContent {
		img = img.WithoutContent()
	}
	return img, nil
}

type imagesDeleteArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleImagesDelete(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imagesDeleteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.lib.Delete(ctx, a.ID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted": a.ID, "total": s.lib.Len()}, nil
}

func (s *Server) handleImagesClear(ctx context.Context) (interface{}, error) {
	n := s.lib.Len()
	if err := s.lib.Clear(ctx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"cleared": n}, nil
}

func (s *Server) handleOCRInfo(ctx context.Context) (interface{}, error) {
	if s.ocr == nil {
		return map[string]interface{}{"available": false, "error": "no OCR backend configured"}, nil
	}
	return s.ocr.Info(ctx), nil
}
