package ocr

import (
	"context"
	"errors"
	"fmt"
)

// Engine names accepted by configuration.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
	EngineStatic    = "static"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// ErrTesseractUnavailable is wrapped by the Tesseract stub in builds without cgo.
var ErrTesseractUnavailable = errors.New("tesseract support not compiled in (build with CGO_ENABLED=1)")

// Recognizer extracts text from encoded image bytes.
// Implementations must be safe for concurrent use.
type Recognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// Error is returned by recognizers when the engine cannot produce text.
type Error struct {
	Engine string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Engine, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Static returns Text for every image, or Err when it is set.
type Static struct {
	Text string
	Err  error
}

// RecognizeText implements Recognizer.
func (s Static) RecognizeText(ctx context.Context, _ []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Engine: EngineStatic, Err: err}
	}
	if s.Err != nil {
		return "", &Error{Engine: EngineStatic, Err: s.Err}
	}
	return s.Text, nil
}

// TesseractOptions configures the local engine.
type TesseractOptions struct {
	// Language is a Tesseract language code such as "eng" or "eng+hin".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// PageSegMode is a Tesseract page segmentation mode. Zero keeps the engine default.
	PageSegMode int
}

func (o TesseractOptions) withDefaults() TesseractOptions {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	return o
}
