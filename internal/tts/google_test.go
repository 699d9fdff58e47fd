package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ironsheep/nutrition-lens/internal/googleapi"
)

func newTTSServer(t *testing.T, status int, body string, got *synthesizeRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != synthesizePath {
			t.Errorf("path: got %q, want %q", r.URL.Path, synthesizePath)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing API key, query=%q", r.URL.RawQuery)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogle_SynthesizeSpeech(t *testing.T) {
	audio := []byte("ID3fake-mp3-frames")
	var req synthesizeRequest
	srv := newTTSServer(t, http.StatusOK,
		`{"audioContent":"`+base64.StdEncoding.EncodeToString(audio)+`"}`, &req)

	g := NewGoogle(googleapi.New(srv.URL, "test-key", srv.Client()))
	got, err := g.SynthesizeSpeech(context.Background(), "Here are the nutrition facts: Protein: 5 g", DefaultVoice())
	if err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if string(got) != string(audio) {
		t.Errorf("audio: got %q, want %q", got, audio)
	}

	if req.Input.Text != "Here are the nutrition facts: Protein: 5 g" {
		t.Errorf("input text: got %q", req.Input.Text)
	}
	if req.Voice.LanguageCode != "en-IN" || req.Voice.Name != "en-IN-Wavenet-A" {
		t.Errorf("voice: got %+v", req.Voice)
	}
	if req.AudioConfig.AudioEncoding != "MP3" {
		t.Errorf("audioEncoding: got %q, want MP3", req.AudioConfig.AudioEncoding)
	}
}

func TestGoogle_DefaultsEmptyVoice(t *testing.T) {
	var req synthesizeRequest
	srv := newTTSServer(t, http.StatusOK, `{"audioContent":"AAEC"}`, &req)

	if _, err := NewGoogle(googleapi.New(srv.URL, "test-key", nil)).SynthesizeSpeech(context.Background(), "hi", Voice{}); err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if req.Voice.LanguageCode != "en-IN" || req.Voice.Name != "en-IN-Wavenet-A" || req.AudioConfig.AudioEncoding != "MP3" {
		t.Errorf("defaults not applied: voice=%+v audio=%+v", req.Voice, req.AudioConfig)
	}
}

func TestGoogle_KeepsCustomLanguageWithoutVoiceName(t *testing.T) {
	var req synthesizeRequest
	srv := newTTSServer(t, http.StatusOK, `{"audioContent":"AAEC"}`, &req)

	voice := Voice{LanguageCode: "en-GB"}
	if _, err := NewGoogle(googleapi.New(srv.URL, "test-key", nil)).SynthesizeSpeech(context.Background(), "hi", voice); err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if req.Voice.LanguageCode != "en-GB" || req.Voice.Name != "" {
		t.Errorf("voice: got %+v, want en-GB with no name", req.Voice)
	}
}

func TestGoogle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rejected key", http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`},
		{"bad base64", http.StatusOK, `{"audioContent":"***"}`},
		{"empty audio", http.StatusOK, `{"audioContent":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTTSServer(t, tt.status, tt.body, nil)
			_, err := NewGoogle(googleapi.New(srv.URL, "test-key", nil)).SynthesizeSpeech(context.Background(), "hi", DefaultVoice())

			var ttsErr *Error
			if !errors.As(err, &ttsErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
		})
	}
}

func TestGoogle_EmptyText(t *testing.T) {
	g := NewGoogle(googleapi.New("http://127.0.0.1:0", "k", nil))
	var ttsErr *Error
	if _, err := g.SynthesizeSpeech(context.Background(), "", DefaultVoice()); !errors.As(err, &ttsErr) {
		t.Errorf("error = %v, want *Error", err)
	}
}

func TestParseAudioEncoding(t *testing.T) {
	for _, in := range []string{"", "mp3", "MP3", " Mp3 "} {
		got, err := ParseAudioEncoding(in)
		if err != nil || got != MP3 {
			t.Errorf("ParseAudioEncoding(%q) = %q, %v; want MP3", in, got, err)
		}
	}
	if _, err := ParseAudioEncoding("wav"); err == nil {
		t.Error("ParseAudioEncoding(wav) should fail")
	}
	if MP3.ContentType() != "audio/mpeg" || MP3.Extension() != ".mp3" {
		t.Errorf("MP3 metadata: %q %q", MP3.ContentType(), MP3.Extension())
	}
}
