package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/surface"
)

func scannedFixture() (*fakeOpener, *fakeRenderer, *widthRecognizer) {
	opener := &fakeOpener{doc: &fakeDoc{meta: map[string]string{surface.MetaTitle: "Scan"}}}
	renderer := &fakeRenderer{images: []image.Image{
		image.NewGray(image.Rect(0, 0, 10, 14)),
		image.NewGray(image.Rect(0, 0, 11, 14)),
	}}
	recognizer := &widthRecognizer{byWidth: map[int]string{
		10: "Invoice\nTotal 42\nPage 1\n",
		11: "",
	}}
	return opener, renderer, recognizer
}

func TestProcessScannedPDF_RawOCRText(t *testing.T) {
	opener, renderer, recognizer := scannedFixture()
	e := New(opener, renderer, recognizer, Options{DPI: 150, IncludePageImage: true}, nil)

	doc, err := e.ProcessScannedPDF(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer.dpi != 150 {
		t.Errorf("expected render at 150 dpi, got %d", renderer.dpi)
	}
	if !opener.doc.closed {
		t.Error("expected metadata document to be closed")
	}
	if doc.Title != "Scan" {
		t.Errorf("expected title Scan, got %q", doc.Title)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}

	first := doc.Pages[0]
	if first.Text != "Invoice\nTotal 42\nPage 1\n" {
		t.Errorf("expected untouched OCR text, got %q", first.Text)
	}
	if first.Title == nil || *first.Title != "Invoice" {
		t.Errorf("expected title Invoice, got %v", first.Title)
	}
	if doc.Pages[1].Title != nil {
		t.Errorf("expected no title for empty OCR text, got %q", *doc.Pages[1].Title)
	}

	for i, p := range doc.Pages {
		if p.PageNumber != i+1 {
			t.Errorf("page %d: expected number %d, got %d", i, i+1, p.PageNumber)
		}
		if p.Tables == nil || len(p.Tables) != 0 {
			t.Errorf("page %d: expected empty tables, got %#v", i, p.Tables)
		}
		if len(p.Images) != 1 {
			t.Fatalf("page %d: expected 1 image, got %d", i, len(p.Images))
		}
		raw, err := base64.StdEncoding.DecodeString(p.Images[0].Data)
		if err != nil {
			t.Fatalf("page %d: invalid base64: %v", i, err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("page %d: invalid png: %v", i, err)
		}
		if img.Bounds().Dx() != 10+i {
			t.Errorf("page %d: expected width %d, got %d", i, 10+i, img.Bounds().Dx())
		}
	}
}

func TestProcessScannedPDF_Options(t *testing.T) {
	opener, renderer, recognizer := scannedFixture()
	e := New(opener, renderer, recognizer, Options{FilterFooter: true, PageWorkers: 2}, nil)

	doc, err := e.ProcessScannedPDF(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer.dpi != config.DefaultDPI {
		t.Errorf("expected default dpi %d, got %d", config.DefaultDPI, renderer.dpi)
	}
	if doc.Pages[0].Text != "Invoice\nTotal 42" {
		t.Errorf("expected filtered text, got %q", doc.Pages[0].Text)
	}
	for i, p := range doc.Pages {
		if p.Images == nil || len(p.Images) != 0 {
			t.Errorf("page %d: expected no images, got %d", i, len(p.Images))
		}
	}
}

func TestProcessScannedPDF_Failures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("missing ocr backend", func(t *testing.T) {
		opener, renderer, _ := scannedFixture()
		_, err := New(opener, renderer, nil, Options{}, nil).ProcessScannedPDF(context.Background(), "scan.pdf")
		if !errors.Is(err, errNoOCR) {
			t.Errorf("expected errNoOCR, got %v", err)
		}
	})

	t.Run("render", func(t *testing.T) {
		opener, renderer, recognizer := scannedFixture()
		renderer.err = boom
		_, err := New(opener, renderer, recognizer, Options{}, nil).ProcessScannedPDF(context.Background(), "scan.pdf")
		if !errors.Is(err, boom) || !strings.Contains(err.Error(), "render scan.pdf") {
			t.Errorf("expected wrapped render error, got %v", err)
		}
	})

	t.Run("recognize", func(t *testing.T) {
		opener, renderer, recognizer := scannedFixture()
		recognizer.err = boom
		_, err := New(opener, renderer, recognizer, Options{}, nil).ProcessScannedPDF(context.Background(), "scan.pdf")
		if !errors.Is(err, boom) || !strings.Contains(err.Error(), "ocr") {
			t.Errorf("expected wrapped ocr error, got %v", err)
		}
	})

	t.Run("open", func(t *testing.T) {
		_, renderer, recognizer := scannedFixture()
		_, err := New(&fakeOpener{err: boom}, renderer, recognizer, Options{}, nil).ProcessScannedPDF(context.Background(), "scan.pdf")
		if !errors.Is(err, boom) {
			t.Errorf("expected open error, got %v", err)
		}
	})
}
