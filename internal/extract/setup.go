package extract

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/ocr"
	"github.com/dgallion1/pdfextract/internal/parser"
	"github.com/dgallion1/pdfextract/internal/render"
	"github.com/dgallion1/pdfextract/internal/surface"
)

// FromConfig wires the PDF opener, page renderer and OCR engine named by cfg
// into an Extractor. A build without OCR support still serves the digital
// pipeline; scanned jobs then fail with a clear error.
func FromConfig(cfg config.Config, log *slog.Logger) (*Extractor, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	renderer, err := render.New(cfg.Renderer)
	if err != nil {
		return nil, err
	}

	var recognizer surface.Recognizer
	tess, err := ocr.New(cfg.OCRLanguages())
	switch {
	case errors.Is(err, ocr.ErrOCRNotEnabled):
		log.Warn("ocr disabled, scanned pipeline unavailable")
	case err != nil:
		return nil, fmt.Errorf("ocr: %w", err)
	default:
		recognizer = tess
	}

	opener := parser.NewOpener(parser.OptionsFromConfig(cfg))
	return New(opener, renderer, recognizer, OptionsFromConfig(cfg), log), nil
}
