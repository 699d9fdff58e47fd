package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ironsheep/nutrition-lens/internal/googleapi"
)

// newVisionServer serves a canned annotate response and records the request.
func newVisionServer(t *testing.T, status int, body string, got *annotateRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != annotatePath {
			t.Errorf("path: got %q, want %q", r.URL.Path, annotatePath)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing API key, query=%q", r.URL.RawQuery)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVision_RecognizeText(t *testing.T) {
	var req annotateRequest
	srv := newVisionServer(t, http.StatusOK, `{"responses":[{"textAnnotations":[
		{"locale":"en","description":"Protein 5g\nSugar 3.2g"},
		{"description":"Protein"}]}]}`, &req)

	v := NewVision(googleapi.New(srv.URL, "test-key", srv.Client()), "en")
	got, err := v.RecognizeText(context.Background(), []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("RecognizeText failed: %v", err)
	}
	if got != "Protein 5g\nSugar 3.2g" {
		t.Errorf("text: got %q", got)
	}

	if len(req.Requests) != 1 {
		t.Fatalf("requests: got %d, want 1", len(req.Requests))
	}
	r := req.Requests[0]
	if r.Image.Content != base64.StdEncoding.EncodeToString([]byte("fake-jpeg")) {
		t.Errorf("image content not base64 of input: %q", r.Image.Content)
	}
	if len(r.Features) != 1 || r.Features[0].Type != "TEXT_DETECTION" {
		t.Errorf("features: got %+v", r.Features)
	}
	if r.ImageContext == nil || len(r.ImageContext.LanguageHints) != 1 || r.ImageContext.LanguageHints[0] != "en" {
		t.Errorf("imageContext: got %+v", r.ImageContext)
	}
}

func TestVision_NoText(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no annotations", `{"responses":[{}]}`},
		{"no responses", `{"responses":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newVisionServer(t, http.StatusOK, tt.body, nil)
			got, err := NewVision(googleapi.New(srv.URL, "test-key", nil)).RecognizeText(context.Background(), []byte("img"))
			if err != nil {
				t.Fatalf("RecognizeText failed: %v", err)
			}
			if got != "" {
				t.Errorf("text: got %q, want empty", got)
			}
		})
	}
}

func TestVision_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"per-image error", http.StatusOK, `{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`},
		{"rejected key", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`},
		{"malformed body", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newVisionServer(t, tt.status, tt.body, nil)
			_, err := NewVision(googleapi.New(srv.URL, "test-key", nil)).RecognizeText(context.Background(), []byte("img"))

			var ocrErr *Error
			if !errors.As(err, &ocrErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if ocrErr.Engine != EngineVision {
				t.Errorf("Engine = %q, want %q", ocrErr.Engine, EngineVision)
			}
		})
	}
}

func TestVision_EmptyImage(t *testing.T) {
	v := NewVision(googleapi.New("http://127.0.0.1:0", "k", nil))
	if _, err := v.RecognizeText(context.Background(), nil); err == nil {
		t.Error("RecognizeText should fail for empty input")
	}
}

func TestVision_ImageTooLarge(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	v := NewVision(googleapi.New(srv.URL, "k", nil))
	_, err := v.RecognizeText(context.Background(), make([]byte, VisionMaxImageBytes+1))

	var ocrErr *Error
	if !errors.As(err, &ocrErr) || !strings.Contains(err.Error(), "limit is") {
		t.Errorf("error = %v, want a size limit *Error", err)
	}
	if called {
		t.Error("oversized image should not be sent")
	}
}
