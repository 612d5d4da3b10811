package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func idArg(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "images_ingest",
			Description: "OCR one or more image files and add them to the collection. Files whose name is already " +
				"in the collection are skipped. The whole batch fails if any file cannot be recognized.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"minItems":    1,
						"description": "Absolute paths to image files (PNG, JPEG, GIF, BMP, TIFF, WebP)",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name: "images_search",
			Description: "Find images whose extracted text contains the query (case-insensitive substring match). " +
				"An empty query returns no results.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Text to look for; spaces and punctuation match literally",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "images_list",
			Description: "List every image in the collection in upload order, without image content.",
			InputSchema: noArgs(),
		},
		{
			Name:        "images_get",
			Description: "Get one image by ID, optionally including its content as a data URI.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idArg("Image ID"),
					"include_content": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the image as a base64 data URI. Default false",
						"default":     false,
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "images_delete",
			Description: "Remove one image from the collection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idArg("Image ID"),
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "images_clear",
			Description: "Remove every image from the collection.",
			InputSchema: noArgs(),
		},
		{
			Name:        "ocr_info",
			Description: "Report whether the OCR engine can be started, with its version and languages.",
			InputSchema: noArgs(),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
