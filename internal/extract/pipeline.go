// Package extract turns PDF page surfaces into the normalized document model.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/document"
	"github.com/dgallion1/pdfextract/internal/surface"
	"golang.org/x/sync/errgroup"
)

// Options tunes an Extractor.
type Options struct {
	// PageWorkers bounds how many pages are processed at once.
	PageWorkers int
	// DPI used to rasterise pages on the scanned path.
	DPI int
	// FilterFooter applies the digital path's text cleaning to OCR output.
	FilterFooter bool
	// IncludePageImage attaches the rendered page to each scanned page.
	IncludePageImage bool
}

// OptionsFromConfig maps the service configuration onto extractor options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		PageWorkers:      cfg.PageWorkers,
		DPI:              cfg.RenderDPI,
		FilterFooter:     cfg.OCRFilterFooter,
		IncludePageImage: cfg.OCRIncludePageImage,
	}
}

// Extractor runs the digital and scanned pipelines.
type Extractor struct {
	opener     surface.Opener
	renderer   surface.Renderer
	recognizer surface.Recognizer
	opts       Options
	log        *slog.Logger
	stats      *Stats
}

// New creates an Extractor. renderer and recognizer may be nil when only the
// digital pipeline is used.
func New(opener surface.Opener, renderer surface.Renderer, recognizer surface.Recognizer, opts Options, log *slog.Logger) *Extractor {
	if opts.PageWorkers <= 0 {
		opts.PageWorkers = 1
	}
	if opts.DPI <= 0 {
		opts.DPI = config.DefaultDPI
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Extractor{
		opener:     opener,
		renderer:   renderer,
		recognizer: recognizer,
		opts:       opts,
		log:        log,
		stats:      NewStats(time.Hour),
	}
}

// Stats returns the extractor's stage latency tracker.
func (e *Extractor) Stats() *Stats {
	return e.stats
}

// Process runs the pipeline selected by p.
func (e *Extractor) Process(ctx context.Context, path string, p config.Pipeline) (*document.Document, error) {
	switch p {
	case config.PipelineDigital:
		return e.ProcessPDF(ctx, path)
	case config.PipelineScanned:
		return e.ProcessScannedPDF(ctx, path)
	default:
		return nil, fmt.Errorf("unknown pipeline %q", p)
	}
}

// ProcessPDF extracts a document with a text layer. Any page failure aborts
// the whole document.
func (e *Extractor) ProcessPDF(ctx context.Context, path string) (doc *document.Document, err error) {
	log := e.log.With("path", path, "pipeline", config.PipelineDigital)

	src, err := e.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			doc, err = nil, fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	doc, err = newDocument(src)
	if err != nil {
		return nil, err
	}

	n := src.PageCount()
	pages := make([]document.Page, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.PageWorkers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := e.extractPage(src, i)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			pages[i] = page
			log.Debug("page extracted", "page", i+1, "tables", len(page.Tables), "images", len(page.Images))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	doc.Pages = pages

	log.Info("document extracted", "pages", n, "tables", doc.TableCount(), "images", doc.ImageCount())
	return doc, nil
}

func (e *Extractor) extractPage(src surface.Document, index int) (document.Page, error) {
	page, err := src.Page(index)
	if err != nil {
		return document.Page{}, fmt.Errorf("load page: %w", err)
	}

	start := time.Now()
	raw, err := page.Text()
	if err != nil {
		return document.Page{}, fmt.Errorf("extract text: %w", err)
	}
	e.stats.Since(StageText, start)
	text := CleanText(raw)

	start = time.Now()
	tables, err := ExtractTables(page)
	if err != nil {
		return document.Page{}, err
	}
	e.stats.Since(StageTables, start)

	start = time.Now()
	images, err := ExtractImages(page)
	if err != nil {
		return document.Page{}, err
	}
	e.stats.Since(StageImages, start)

	p := document.NewPage(index+1, text, TitleFromText(text))
	p.Tables = tables
	p.Images = images
	return p, nil
}

// newDocument reads the document-level metadata with its fallbacks.
func newDocument(src surface.Document) (*document.Document, error) {
	meta, err := src.Metadata()
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	title := meta[surface.MetaTitle]
	if title == "" {
		title = config.FallbackTitle
	}
	return &document.Document{
		Title:  title,
		Author: optional(meta, surface.MetaAuthor),
		Date:   optional(meta, surface.MetaCreationDate),
		Pages:  []document.Page{},
	}, nil
}

func optional(meta map[string]string, key string) *string {
	v, ok := meta[key]
	if !ok || v == "" {
		return nil
	}
	return &v
}
