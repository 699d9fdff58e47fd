//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with a local Tesseract installation.
//
// gosseract clients are not safe for concurrent use, so each call creates and
// closes its own client. Tesseract itself is not interruptible; the context is
// checked once before work starts.
type Tesseract struct {
	opts TesseractOptions
}

// NewTesseract returns a Tesseract recognizer. Empty options select English.
func NewTesseract(opts TesseractOptions) *Tesseract {
	return &Tesseract{opts: opts.withDefaults()}
}

// RecognizeText implements Recognizer.
func (t *Tesseract) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Engine: EngineTesseract, Err: err}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.opts.TessdataPrefix); err != nil {
			return "", &Error{Engine: EngineTesseract, Err: fmt.Errorf("failed to set tessdata path: %w", err)}
		}
	}

	if err := client.SetLanguage(strings.Split(t.opts.Language, "+")...); err != nil {
		return "", &Error{Engine: EngineTesseract, Err: fmt.Errorf("failed to set language: %w", err)}
	}

	if t.opts.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(t.opts.PageSegMode)); err != nil {
			return "", &Error{Engine: EngineTesseract, Err: fmt.Errorf("failed to set page segmentation mode: %w", err)}
		}
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", &Error{Engine: EngineTesseract, Err: fmt.Errorf("failed to set image: %w", err)}
	}

	text, err := client.Text()
	if err != nil {
		return "", &Error{Engine: EngineTesseract, Err: fmt.Errorf("OCR failed: %w", err)}
	}

	return text, nil
}

// Version reports the linked Tesseract library version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
