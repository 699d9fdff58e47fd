package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tests := []struct {
		name        string
		withHistory bool
		want        []string
	}{
		{"without history", false, []string{"label_load", "label_scan", "label_parse_text", "label_narrate", "label_report"}},
		{"with history", true, []string{"label_load", "label_scan", "label_parse_text", "label_narrate", "label_report", "label_history"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools := GetToolDefinitions(tt.withHistory)
			if len(tools) != len(tt.want) {
				t.Fatalf("got %d tools, want %d", len(tools), len(tt.want))
			}
			for i, name := range tt.want {
				if tools[i].Name != name {
					t.Errorf("tool %d: got %s, want %s", i, tools[i].Name, name)
				}
			}
		})
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions(true) {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required field must be declared.
			required, _ := tool.InputSchema["required"].([]string)
			for _, field := range required {
				if _, ok := props[field]; !ok {
					t.Errorf("required field %q not in properties", field)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredFields(t *testing.T) {
	want := map[string]string{
		"label_load":       "path",
		"label_scan":       "path",
		"label_parse_text": "text",
	}

	for _, tool := range GetToolDefinitions(false) {
		field, ok := want[tool.Name]
		if !ok {
			continue
		}
		required, _ := tool.InputSchema["required"].([]string)
		if len(required) != 1 || required[0] != field {
			t.Errorf("%s required: got %v, want [%s]", tool.Name, required, field)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	for _, withHistory := range []bool{false, true} {
		s := newTestServer(t, "", withHistory)
		resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

		result, ok := resp.Result.(map[string]interface{})
		if !ok {
			t.Fatal("Result should be a map")
		}
		tools, ok := result["tools"].([]Tool)
		if !ok {
			t.Fatal("tools should be a slice of Tool")
		}

		hasHistory := false
		for _, tool := range tools {
			if tool.Name == "label_history" {
				hasHistory = true
			}
		}
		if hasHistory != withHistory {
			t.Errorf("withHistory=%v: label_history listed=%v", withHistory, hasHistory)
		}
	}
}
