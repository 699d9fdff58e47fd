// Package httpapi serves the label pipeline over HTTP with gin.
//
// Routes:
//
//	GET    /health
//	POST   /api/scan              multipart "image", optional "region", "preprocess", "save"
//	POST   /api/parse             {"text": "..."}
//	POST   /api/narrate           {"text": "..."}; audio/mpeg when speech is configured
//	GET    /api/scans             ?limit=N
//	GET    /api/scans/:id
//	DELETE /api/scans/:id
//	GET    /api/scans/:id/report  HTML, or Markdown with ?format=markdown
//
// Errors are JSON objects {"error": "..."}. Undecodable images map to 422, malformed
// requests to 400, unknown scan IDs to 404 and a disabled history to 501.
package httpapi
