// Package commands defines the nutrition-lens CLI.
//
// Commands
//
//   - scan      Read a label photo and print nutrition, ingredients, allergens and rating
//   - parse     Analyze already recognized label text from a file or stdin
//   - narrate   Speak the nutrition facts of a label photo into an audio file
//   - history   List, show or delete saved scans
//   - mcp       Serve the label tools over MCP on stdin/stdout
//   - serve     Serve the HTTP API
//   - version   Print build information
//
// # Implementation
//
// The root command resolves configuration once: JSON file, then environment, then
// persistent flags. Each subcommand builds the dependency graph from it through
// openWire and closes it when done, so commands that need no engines (version, help)
// never touch Tesseract or the history database.
package commands
