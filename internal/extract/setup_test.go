package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/ocr"
	"github.com/dgallion1/pdfextract/internal/render"
)

func TestFromConfig(t *testing.T) {
	cfg := config.Load()
	cfg.PageWorkers = 3

	ex, err := FromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if ex.opts.PageWorkers != 3 {
		t.Errorf("expected 3 page workers, got %d", ex.opts.PageWorkers)
	}
	if ex.renderer == nil {
		t.Error("expected a renderer")
	}
	if ocr.Enabled != (ex.recognizer != nil) {
		t.Errorf("recognizer presence %v does not match ocr.Enabled %v", ex.recognizer != nil, ocr.Enabled)
	}
	if !ocr.Enabled {
		_, err := ex.ProcessScannedPDF(context.Background(), "missing.pdf")
		if !errors.Is(err, errNoOCR) {
			t.Errorf("expected errNoOCR, got %v", err)
		}
	}
}

func TestFromConfig_UnknownRenderer(t *testing.T) {
	cfg := config.Load()
	cfg.Renderer = "ghostscript"
	if _, err := FromConfig(cfg, nil); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Errorf("expected ErrUnknownRenderer, got %v", err)
	}
}
