// Package render rasterises PDF pages for the OCR path.
package render

import (
	"errors"
	"fmt"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/surface"
)

// ErrUnknownRenderer is returned by New for an unrecognised backend name.
var ErrUnknownRenderer = errors.New("unknown renderer")

// New returns the renderer registered under name.
func New(name string) (surface.Renderer, error) {
	switch name {
	case config.RendererFitz, "":
		return &Fitz{}, nil
	case config.RendererPdftoppm:
		return &Pdftoppm{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
	}
}
