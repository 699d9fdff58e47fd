//go:build !cgo

package ocr

import "context"

// Tesseract is unavailable in builds without cgo. Every call returns an *Error
// wrapping ErrTesseractUnavailable.
type Tesseract struct {
	opts TesseractOptions
}

// NewTesseract returns the stub recognizer.
func NewTesseract(opts TesseractOptions) *Tesseract {
	return &Tesseract{opts: opts.withDefaults()}
}

// RecognizeText implements Recognizer.
func (t *Tesseract) RecognizeText(ctx context.Context, _ []byte) (string, error) {
	return "", &Error{Engine: EngineTesseract, Err: ErrTesseractUnavailable}
}

// Version reports that no Tesseract library is linked.
func Version() string { return "" }
