//go:build !ocr

// Package ocr recognises text in rendered pages with Tesseract.
//
// This build was made without the "ocr" tag; rebuild with -tags ocr to
// enable it.
package ocr

import (
	"context"
	"errors"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Enabled reports whether Tesseract support was compiled in.
const Enabled = false

// Tesseract is a placeholder that always fails.
type Tesseract struct {
	Languages []string
}

// New returns ErrOCRNotEnabled.
func New(languages []string) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Recognize returns ErrOCRNotEnabled.
func (t *Tesseract) Recognize(ctx context.Context, img []byte) (string, error) {
	return "", ErrOCRNotEnabled
}
