package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ironsheep/nutrition-lens/internal/googleapi"
)

// DefaultVisionEndpoint is the Google Cloud Vision REST host.
const DefaultVisionEndpoint = "https://vision.googleapis.com"

const annotatePath = "/v1/images:annotate"

// VisionMaxImageBytes is the largest image RecognizeText sends. Vision rejects JSON
// requests over 10 MB and base64 inflates the image by a third.
const VisionMaxImageBytes = 7 << 20

// Vision recognizes text with Google Cloud Vision TEXT_DETECTION.
type Vision struct {
	client        *googleapi.Client
	languageHints []string
}

// NewVision returns a Vision recognizer posting through client.
// Language hints such as "en" are optional.
func NewVision(client *googleapi.Client, languageHints ...string) *Vision {
	return &Vision{client: client, languageHints: languageHints}
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image        visionImage   `json:"image"`
	Features     []feature     `json:"features"`
	ImageContext *imageContext `json:"imageContext,omitempty"`
}

type visionImage struct {
	Content string `json:"content"`
}

type feature struct {
	Type string `json:"type"`
}

type imageContext struct {
	LanguageHints []string `json:"languageHints,omitempty"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type imageResponse struct {
	TextAnnotations []textAnnotation `json:"textAnnotations"`
	Error           *visionStatus    `json:"error,omitempty"`
}

type textAnnotation struct {
	Locale      string `json:"locale,omitempty"`
	Description string `json:"description"`
}

type visionStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RecognizeText implements Recognizer. The first text annotation holds the
// whole detected text; an image without annotations yields "".
func (v *Vision) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", &Error{Engine: EngineVision, Err: errors.New("empty image")}
	}
	if len(image) > VisionMaxImageBytes {
		return "", &Error{Engine: EngineVision, Err: fmt.Errorf("image is %d bytes, limit is %d", len(image), VisionMaxImageBytes)}
	}

	req := annotateRequest{Requests: []imageRequest{{
		Image:    visionImage{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []feature{{Type: "TEXT_DETECTION"}},
	}}}
	if len(v.languageHints) > 0 {
		req.Requests[0].ImageContext = &imageContext{LanguageHints: v.languageHints}
	}

	var resp annotateResponse
	if err := v.client.PostJSON(ctx, annotatePath, req, &resp); err != nil {
		return "", &Error{Engine: EngineVision, Err: err}
	}

	if len(resp.Responses) == 0 {
		return "", nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return "", &Error{Engine: EngineVision, Err: fmt.Errorf("annotate failed (code %d): %s", r.Error.Code, r.Error.Message)}
	}
	if len(r.TextAnnotations) == 0 {
		return "", nil
	}
	return r.TextAnnotations[0].Description, nil
}
