package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNoPdftoppm is returned when the pdftoppm binary is not on PATH.
var ErrNoPdftoppm = errors.New("pdftoppm not found")

// Pdftoppm renders pages by shelling out to poppler's pdftoppm.
type Pdftoppm struct {
	// Binary overrides the executable name.
	Binary string
}

func (p Pdftoppm) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return "pdftoppm"
}

// Available reports whether the pdftoppm binary can be found.
func (p Pdftoppm) Available() bool {
	_, err := exec.LookPath(p.binary())
	return err == nil
}

// Rasterize writes one PNG per page into a temporary directory and decodes
// them in page order.
func (p Pdftoppm) Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error) {
	bin, err := exec.LookPath(p.binary())
	if err != nil {
		return nil, ErrNoPdftoppm
	}

	dir, err := os.MkdirTemp("", "pdfextract-render-*")
	if err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	defer os.RemoveAll(dir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-r", strconv.Itoa(dpi), "-png", path, filepath.Join(dir, "page"))
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	names, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	sortPageFiles(names)

	images := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := decodePNG(name)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// sortPageFiles orders page-N.png names by N. pdftoppm zero-pads to the
// width of the page count, but sorting numerically does not rely on that.
func sortPageFiles(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return pageIndex(names[i]) < pageIndex(names[j])
	})
}

func pageIndex(name string) int {
	base := strings.TrimSuffix(filepath.Base(name), ".png")
	i := strings.LastIndexByte(base, '-')
	n, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return -1
	}
	return n
}

func decodePNG(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(name), err)
	}
	return img, nil
}
