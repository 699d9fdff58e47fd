// Package server implements the MCP (Model Context Protocol) server for food label analysis.
//
// The server exposes the label pipeline to MCP clients as JSON-RPC 2.0 tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - label_load: Image dimensions, format and whether OCR will upscale it
//   - label_scan: OCR plus nutrient table, ingredients, allergens and health rating
//   - label_parse_text: The same analysis for text that is already transcribed
//   - label_narrate: Spoken summary text, with base64 MP3 when speech is configured
//   - label_report: Markdown report for an image, text or stored scan
//   - label_history: List, fetch or delete stored scans (only when history is enabled)
//
// # Image Caching
//
// Label files are read once and cached by path for the lifetime of the process,
// so scanning and narrating the same photo does not re-read it.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A file that is not a decodable image fails label_scan. OCR failures do not: the
// result is empty and its warnings field says what went wrong.
//
// # Usage
//
//	w, err := app.NewWire(ctx, cfg, nil)
//	...
//	srv := server.New(w, version)
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
