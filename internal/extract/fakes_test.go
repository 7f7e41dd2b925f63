package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/dgallion1/pdfextract/internal/surface"
)

type fakePage struct {
	text      string
	textErr   error
	blocks    []surface.TextBlock
	blocksErr error
	regions   []surface.Region
	detectErr error
	pixmaps   []surface.Pixmap
	refsErr   error
	pixErr    error

	mu         sync.Mutex
	blockCalls int
}

func (p *fakePage) Text() (string, error) { return p.text, p.textErr }

func (p *fakePage) TextBlocks() ([]surface.TextBlock, error) {
	p.mu.Lock()
	p.blockCalls++
	p.mu.Unlock()
	return p.blocks, p.blocksErr
}

func (p *fakePage) DetectTables() ([]surface.Region, error) { return p.regions, p.detectErr }

func (p *fakePage) ImageRefs() ([]surface.ImageRef, error) {
	if p.refsErr != nil {
		return nil, p.refsErr
	}
	refs := make([]surface.ImageRef, len(p.pixmaps))
	for i := range p.pixmaps {
		refs[i] = surface.ImageRef{Name: fmt.Sprintf("Im%d", i), ObjNr: i}
	}
	return refs, nil
}

func (p *fakePage) Pixmap(ref surface.ImageRef) (surface.Pixmap, error) {
	if p.pixErr != nil {
		return surface.Pixmap{}, p.pixErr
	}
	return p.pixmaps[ref.ObjNr], nil
}

type fakeDoc struct {
	meta    map[string]string
	metaErr error
	pages   []*fakePage

	mu     sync.Mutex
	closed bool
}

func (d *fakeDoc) Metadata() (map[string]string, error) { return d.meta, d.metaErr }

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) Page(index int) (surface.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	return d.pages[index], nil
}

func (d *fakeDoc) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

type fakeOpener struct {
	doc *fakeDoc
	err error
}

func (o *fakeOpener) Open(path string) (surface.Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type fakeRenderer struct {
	images []image.Image
	err    error
	dpi    int
}

func (r *fakeRenderer) Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error) {
	r.dpi = dpi
	return r.images, r.err
}

// widthRecognizer returns the text registered for the decoded image width.
type widthRecognizer struct {
	byWidth map[int]string
	err     error
}

func (r *widthRecognizer) Recognize(ctx context.Context, img []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return "", err
	}
	return r.byWidth[cfg.Width], nil
}
