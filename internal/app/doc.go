// Package app loads configuration and builds the dependency graph shared by the
// CLI, the MCP server and the HTTP API.
//
// Configuration is layered: an optional JSON file, then environment variables, then
// command-line flags applied by the caller. NewWire turns a validated Config into
// long-lived, read-only collaborators (OCR engine, speech synthesizer, allergen
// detector, history store) and the scan pipeline built on them.
package app
