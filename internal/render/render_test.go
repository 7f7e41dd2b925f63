package render

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	if r, err := New(config.RendererFitz); err != nil {
		t.Errorf("fitz: unexpected error: %v", err)
	} else if _, ok := r.(*Fitz); !ok {
		t.Errorf("fitz: expected *Fitz, got %T", r)
	}
	if r, err := New(config.RendererPdftoppm); err != nil {
		t.Errorf("pdftoppm: unexpected error: %v", err)
	} else if _, ok := r.(*Pdftoppm); !ok {
		t.Errorf("pdftoppm: expected *Pdftoppm, got %T", r)
	}
	if _, err := New("ghostscript"); !errors.Is(err, ErrUnknownRenderer) {
		t.Errorf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestSortPageFiles(t *testing.T) {
	names := []string{"/tmp/x/page-10.png", "/tmp/x/page-2.png", "/tmp/x/page-01.png"}
	sortPageFiles(names)
	want := []string{"/tmp/x/page-01.png", "/tmp/x/page-2.png", "/tmp/x/page-10.png"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page-1.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 3, 5))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := decodePNG(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 5 {
		t.Errorf("expected 3x5, got %v", img.Bounds())
	}

	bad := filepath.Join(t.TempDir(), "page-2.png")
	os.WriteFile(bad, []byte("not png"), 0o644)
	if _, err := decodePNG(bad); err == nil {
		t.Error("expected decode error")
	}
}

func TestPdftoppm_MissingBinary(t *testing.T) {
	p := Pdftoppm{Binary: "pdftoppm-does-not-exist"}
	if p.Available() {
		t.Fatal("expected binary to be unavailable")
	}
	_, err := p.Rasterize(context.Background(), "x.pdf", 72)
	if !errors.Is(err, ErrNoPdftoppm) {
		t.Errorf("expected ErrNoPdftoppm, got %v", err)
	}
}

func TestPdftoppm_InvalidInput(t *testing.T) {
	p := Pdftoppm{}
	if !p.Available() {
		t.Skip("pdftoppm not installed")
	}
	path := filepath.Join(t.TempDir(), "bad.pdf")
	os.WriteFile(path, []byte("not a pdf"), 0o644)
	if _, err := p.Rasterize(context.Background(), path, 72); err == nil {
		t.Error("expected error for invalid pdf")
	}
}
