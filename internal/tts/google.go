package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ironsheep/nutrition-lens/internal/googleapi"
)

// DefaultGoogleEndpoint is the Google Cloud Text-to-Speech REST host.
const DefaultGoogleEndpoint = "https://texttospeech.googleapis.com"

const synthesizePath = "/v1/text:synthesize"

// Google synthesizes speech with Google Cloud Text-to-Speech.
type Google struct {
	client *googleapi.Client
}

// NewGoogle returns a synthesizer posting through client.
func NewGoogle(client *googleapi.Client) *Google {
	return &Google{client: client}
}

type synthesizeRequest struct {
	Input       synthesisInput `json:"input"`
	Voice       voiceSelection `json:"voice"`
	AudioConfig audioConfig    `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
}

type audioConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// SynthesizeSpeech implements Synthesizer. Empty voice fields take DefaultVoice values.
func (g *Google) SynthesizeSpeech(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if text == "" {
		return nil, &Error{Err: errors.New("empty text")}
	}

	def := DefaultVoice()
	if voice.LanguageCode == "" {
		voice.LanguageCode = def.LanguageCode
		if voice.VoiceName == "" {
			voice.VoiceName = def.VoiceName
		}
	}
	if voice.AudioEncoding == "" {
		voice.AudioEncoding = def.AudioEncoding
	}

	req := synthesizeRequest{
		Input:       synthesisInput{Text: text},
		Voice:       voiceSelection{LanguageCode: voice.LanguageCode, Name: voice.VoiceName},
		AudioConfig: audioConfig{AudioEncoding: string(voice.AudioEncoding)},
	}

	var resp synthesizeResponse
	if err := g.client.PostJSON(ctx, synthesizePath, req, &resp); err != nil {
		return nil, &Error{Err: err}
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to decode audio content: %w", err)}
	}
	if len(audio) == 0 {
		return nil, &Error{Err: errors.New("empty audio content")}
	}
	return audio, nil
}
