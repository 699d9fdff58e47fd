package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/nutrition-lens/internal/history"
	"github.com/ironsheep/nutrition-lens/internal/imaging"
	"github.com/ironsheep/nutrition-lens/internal/pipeline"
	"github.com/ironsheep/nutrition-lens/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "label_scan").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "label_load":
		return s.handleLabelLoad(args)
	case "label_scan":
		return s.handleLabelScan(ctx, args)
	case "label_parse_text":
		return s.handleLabelParseText(args)
	case "label_narrate":
		return s.handleLabelNarrate(ctx, args)
	case "label_report":
		return s.handleLabelReport(ctx, args)
	case "label_history":
		return s.handleLabelHistory(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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

// === Image Handlers ===

type labelLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleLabelLoad(args json.RawMessage) (interface{}, error) {
	var a labelLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Reload {
		s.wire.Images.Evict(a.Path)
	}
	return imaging.LoadImageInfo(s.wire.Images, a.Path)
}

type labelScanArgs struct {
	Path       string `json:"path"`
	Region     string `json:"region"`
	Preprocess *bool  `json:"preprocess"`
	Save       bool   `json:"save"`
	Reload     bool   `json:"reload"`
}

type scanResponse struct {
	*pipeline.ScanResult
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// scanOptions translates the optional region and preprocess arguments.
func scanOptions(region string, preprocess *bool) ([]pipeline.ScanOption, error) {
	var opts []pipeline.ScanOption
	if region != "" {
		r, err := imaging.ParseRegion(region)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithRegion(r))
	}
	if preprocess != nil {
		opts = append(opts, pipeline.WithPreprocess(*preprocess))
	}
	return opts, nil
}

// scanPath loads a label from the cache and scans it.
func (s *Server) scanPath(ctx context.Context, path, region string, preprocess *bool) (*pipeline.ScanResult, []byte, error) {
	if path == "" {
		return nil, nil, errors.New("path is required")
	}
	opts, err := scanOptions(region, preprocess)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.wire.Images.Load(path)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.wire.Pipeline.Scan(ctx, data, opts...)
	if err != nil {
		return nil, nil, err
	}
	return result, data, nil
}

func (s *Server) handleLabelScan(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a labelScanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Reload {
		s.wire.Images.Evict(a.Path)
	}
	result, data, err := s.scanPath(ctx, a.Path, a.Region, a.Preprocess)
	if err != nil {
		return nil, err
	}

	resp := scanResponse{ScanResult: result}
	if a.Save {
		store, err := s.wire.RequireHistory(ctx)
		if err != nil {
			return nil, err
		}
		rec, dup, err := store.SaveOnce(ctx, filepath.Base(a.Path), data, result)
		if err != nil {
			return nil, err
		}
		resp.ID = rec.ID
		resp.Duplicate = dup
	}
	return resp, nil
}

type labelParseTextArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleLabelParseText(args json.RawMessage) (interface{}, error) {
	var a labelParseTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Text) == "" {
		return nil, errors.New("text is required")
	}
	return s.wire.Pipeline.ScanText(a.Text), nil
}

// === Narration Handlers ===

type labelNarrateArgs struct {
	Path         string `json:"path"`
	Region       string `json:"region"`
	Text         string `json:"text"`
	IncludeAudio *bool  `json:"include_audio"`
}

type narrateResponse struct {
	Text          string   `json:"text"`
	AudioBase64   string   `json:"audio_base64,omitempty"`
	AudioEncoding string   `json:"audio_encoding,omitempty"`
	Warning       string   `json:"warning,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

func (s *Server) handleLabelNarrate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a labelNarrateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var result *pipeline.ScanResult
	switch {
	case a.Text != "":
		result = s.wire.Pipeline.ScanText(a.Text)
	case a.Path != "":
		var err error
		result, _, err = s.scanPath(ctx, a.Path, a.Region, nil)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("path or text is required")
	}

	n := s.wire.Pipeline.Narrate(ctx, result.Nutrition)
	resp := narrateResponse{Text: n.Text, Warning: n.Warning, Warnings: result.Warnings}
	if len(n.Audio) > 0 && (a.IncludeAudio == nil || *a.IncludeAudio) {
		resp.AudioBase64 = base64.StdEncoding.EncodeToString(n.Audio)
		resp.AudioEncoding = string(s.wire.Config.Voice().AudioEncoding)
	}
	return resp, nil
}

// === Report and History Handlers ===

type labelReportArgs struct {
	Path string `json:"path"`
	Text string `json:"text"`
	ID   string `json:"id"`
}

type reportResponse struct {
	Markdown string `json:"markdown"`
}

func (s *Server) handleLabelReport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a labelReportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	switch {
	case a.ID != "":
		store, err := s.wire.RequireHistory(ctx)
		if err != nil {
			return nil, err
		}
		rec, err := store.Get(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		meta := report.Meta{Source: rec.Source, ScannedAt: rec.CreatedAt, ID: rec.ID}
		return reportResponse{Markdown: report.Markdown(meta, rec.Result)}, nil
	case a.Text != "":
		return reportResponse{Markdown: report.Markdown(report.Meta{}, s.wire.Pipeline.ScanText(a.Text))}, nil
	case a.Path != "":
		result, _, err := s.scanPath(ctx, a.Path, "", nil)
		if err != nil {
			return nil, err
		}
		meta := report.Meta{Source: filepath.Base(a.Path), ScannedAt: time.Now()}
		return reportResponse{Markdown: report.Markdown(meta, result)}, nil
	default:
		return nil, errors.New("path, text or id is required")
	}
}

type labelHistoryArgs struct {
	Limit  int    `json:"limit"`
	ID     string `json:"id"`
	Delete bool   `json:"delete"`
}

func (s *Server) handleLabelHistory(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a labelHistoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	store, err := s.wire.RequireHistory(ctx)
	if err != nil {
		return nil, err
	}

	if a.ID != "" {
		if a.Delete {
			if err := store.Delete(ctx, a.ID); err != nil {
				return nil, err
			}
			return map[string]interface{}{"deleted": a.ID}, nil
		}
		return store.Get(ctx, a.ID)
	}
	if a.Delete {
		return nil, errors.New("id is required to delete")
	}

	records, err := store.List(ctx, a.Limit)
	if err != nil {
		return nil, err
	}
	return history.Summaries(records), nil
}
