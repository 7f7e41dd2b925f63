package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/document"
	"golang.org/x/sync/errgroup"
)

var errNoOCR = errors.New("scanned pipeline needs a renderer and a recognizer")

// ProcessScannedPDF rasterises every page and substitutes OCR output for the
// text layer. Tables are never produced on this path.
func (e *Extractor) ProcessScannedPDF(ctx context.Context, path string) (*document.Document, error) {
	if e.renderer == nil || e.recognizer == nil {
		return nil, errNoOCR
	}
	log := e.log.With("path", path, "pipeline", config.PipelineScanned)

	src, err := e.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	doc, err := newDocument(src)
	if cerr := src.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rendered, err := e.renderer.Rasterize(ctx, path, e.opts.DPI)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	e.stats.Since(StageRender, start)
	log.Debug("pages rendered", "pages", len(rendered), "dpi", e.opts.DPI)

	pages := make([]document.Page, len(rendered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.PageWorkers)
	for i, img := range rendered {
		g.Go(func() error {
			page, err := e.recognizePage(gctx, i, img)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	doc.Pages = pages

	log.Info("document extracted", "pages", len(pages), "images", doc.ImageCount())
	return doc, nil
}

func (e *Extractor) recognizePage(ctx context.Context, index int, img image.Image) (document.Page, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return document.Page{}, err
	}

	start := time.Now()
	text, err := e.recognizer.Recognize(ctx, data)
	if err != nil {
		return document.Page{}, fmt.Errorf("ocr: %w", err)
	}
	e.stats.Since(StageOCR, start)

	if e.opts.FilterFooter {
		text = CleanText(text)
	}

	p := document.NewPage(index+1, text, TitleFromText(text))
	if e.opts.IncludePageImage {
		p.Images = append(p.Images, document.Image{Data: base64.StdEncoding.EncodeToString(data)})
	}
	return p, nil
}
