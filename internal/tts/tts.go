package tts

import (
	"context"
	"fmt"
	"strings"
)

// AudioEncoding selects the audio container returned by the synthesizer.
type AudioEncoding string

// MP3 is the only supported encoding.
const MP3 AudioEncoding = "MP3"

// ParseAudioEncoding accepts encoding names case-insensitively. Empty means MP3.
func ParseAudioEncoding(s string) (AudioEncoding, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(MP3):
		return MP3, nil
	default:
		return "", fmt.Errorf("unsupported audio encoding %q", s)
	}
}

// ContentType is the MIME type of audio in this encoding.
func (e AudioEncoding) ContentType() string {
	return "audio/mpeg"
}

// Extension is the file extension for audio in this encoding, with leading dot.
func (e AudioEncoding) Extension() string {
	return ".mp3"
}

// Voice selects the language, voice and output format for synthesis.
type Voice struct {
	LanguageCode  string        `json:"language_code"`
	VoiceName     string        `json:"voice_name"`
	AudioEncoding AudioEncoding `json:"audio_encoding"`
}

// DefaultVoice is Indian English WaveNet voice A, MP3 output.
func DefaultVoice() Voice {
	return Voice{LanguageCode: "en-IN", VoiceName: "en-IN-Wavenet-A", AudioEncoding: MP3}
}

// Synthesizer produces audio bytes for text. Implementations must be safe for
// concurrent use.
type Synthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// Error is returned when speech synthesis fails.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "tts: " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }
