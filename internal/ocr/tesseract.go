//go:build ocr

// Package ocr recognises text in rendered pages with Tesseract via gosseract.
//
// Tesseract and its language data must be installed:
//
//	apt-get install tesseract-ocr
//
// Build with -tags ocr to enable it.
package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Enabled reports whether Tesseract support was compiled in.
const Enabled = true

// Tesseract implements surface.Recognizer. A gosseract client is not safe for
// concurrent use, so each call gets its own.
type Tesseract struct {
	Languages []string
}

// New returns a recognizer for the given Tesseract languages.
func New(languages []string) (*Tesseract, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{Languages: languages}, nil
}

// Recognize returns the raw Tesseract output for an encoded image.
func (t *Tesseract) Recognize(ctx context.Context, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Languages...); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}
