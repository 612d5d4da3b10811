// Package server implements the MCP (Model Context Protocol) server for the
// image collection.
//
// This package provides a JSON-RPC 2.0 server that exposes ingestion and text
// search over a library.Library through the MCP protocol, so an assistant can
// add screenshots or scans and later find them by the words they contain.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - images_ingest: OCR image files and add them to the collection
//   - images_search: Case-insensitive substring search over extracted text
//   - images_list: List the collection
//   - images_get: Fetch one image, optionally with its content
//   - images_delete: Remove one image
//   - images_clear: Remove every image
//   - ocr_info: Report OCR engine availability
//
// Listings and search results never include image content; use images_get
// with include_content to fetch it.
//
// # Progress
//
// When a tools/call request for images_ingest carries params._meta.progressToken,
// the server emits notifications/progress messages with the pipeline's
// percentage and stage label before sending the response.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(lib, tesseract, log, version)
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal("MCP server failed", zap.Error(err))
//	}
package server
