package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the label image (JPEG, PNG or GIF)",
}

var reloadProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Re-read the file from disk instead of using the cached copy. Default false",
	"default":     false,
}

var regionProperty = map[string]interface{}{
	"type":        "string",
	"description": "Optional crop before OCR as \"x1,y1,x2,y2\" (0-based, x2/y2 exclusive)",
}

// GetToolDefinitions returns the available tools. The history tool is listed only
// when a history store is configured.
func GetToolDefinitions(withHistory bool) []Tool {
	tools := []Tool{
		{
			Name:        "label_load",
			Description: "Load a label image and return its dimensions, format and whether it is small enough that OCR preprocessing will upscale it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"reload": reloadProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "label_scan",
			Description: "Run OCR on a food label photo and return the nutrient table, ingredient list, detected allergens and a Healthy/Moderate/Avoid rating.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionProperty,
					"reload": reloadProperty,
					"preprocess": map[string]interface{}{
						"type":        "boolean",
						"description": "Grayscale, contrast, sharpen and resize before OCR. Defaults to the config; on for tesseract, off for vision",
					},
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Store the result in scan history (when enabled). Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "label_parse_text",
			Description: "Analyze label text that was already transcribed, skipping OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Label text, e.g. \"Protein 5g Sugar 3.2g Ingredients: Milk, Sugar\"",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "label_narrate",
			Description: "Compose the spoken nutrition summary for a label image or text. When speech synthesis is configured the MP3 audio is returned base64-encoded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionProperty,
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Label text to narrate instead of an image",
					},
					"include_audio": map[string]interface{}{
						"type":        "boolean",
						"description": "Return base64 audio when available. Default true",
						"default":     true,
					},
				},
			},
		},
		{
			Name:        "label_report",
			Description: "Render a Markdown report for a label image, label text or a stored scan ID.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Label text to report on instead of an image",
					},
					"id": map[string]interface{}{
						"type":        "string",
						"description": "ID of a stored scan",
					},
				},
			},
		},
	}

	if withHistory {
		tools = append(tools, Tool{
			Name:        "label_history",
			Description: "List recent stored scans, newest first, or fetch one by ID.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of scans to list. Default 20",
						"default":     20,
					},
					"id": map[string]interface{}{
						"type":        "string",
						"description": "Return only this scan",
					},
					"delete": map[string]interface{}{
						"type":        "boolean",
						"description": "Delete the scan given by id instead of returning it",
						"default":     false,
					},
				},
			},
		})
	}

	return tools
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(s.wire.HistoryEnabled()),
		},
	}
}
