package parser

import (
	"fmt"
	"sync"

	"github.com/dgallion1/pdfextract/internal/surface"
	pdflib "github.com/ledongthuc/pdf"
)

type pdfPage struct {
	number int
	page   pdflib.Page
	opts   Options
	images *imageSource

	layoutOnce sync.Once
	lines      []line
	layoutErr  error

	imagesOnce sync.Once
	pageImages []pageImage
	imagesErr  error
}

func (p *pdfPage) layout() ([]line, error) {
	p.layoutOnce.Do(func() {
		var content pdflib.Content
		var height float64
		p.layoutErr = recoverErr(func() error {
			content = p.page.Content()
			_, height = pageSize(p.page)
			return nil
		})
		if p.layoutErr != nil {
			return
		}
		p.lines = buildLines(content.Text, height, p.opts.ColumnGap)
	})
	return p.lines, p.layoutErr
}

func (p *pdfPage) Text() (string, error) {
	lines, err := p.layout()
	if err != nil {
		return "", err
	}
	return joinLines(lines), nil
}

func (p *pdfPage) TextBlocks() ([]surface.TextBlock, error) {
	lines, err := p.layout()
	if err != nil {
		return nil, err
	}
	return groupBlocks(lines, p.opts.BlockSpacing, p.opts.MinCols), nil
}

func (p *pdfPage) DetectTables() ([]surface.Region, error) {
	lines, err := p.layout()
	if err != nil {
		return nil, err
	}
	return detectTables(lines, p.opts), nil
}

func (p *pdfPage) ImageRefs() ([]surface.ImageRef, error) {
	p.imagesOnce.Do(func() {
		p.pageImages, p.imagesErr = p.images.page(p.number)
	})
	if p.imagesErr != nil {
		return nil, p.imagesErr
	}
	refs := make([]surface.ImageRef, len(p.pageImages))
	for i, img := range p.pageImages {
		refs[i] = surface.ImageRef{Name: img.name, ObjNr: img.objNr}
	}
	return refs, nil
}

func (p *pdfPage) Pixmap(ref surface.ImageRef) (surface.Pixmap, error) {
	if _, err := p.ImageRefs(); err != nil {
		return surface.Pixmap{}, err
	}
	for _, img := range p.pageImages {
		if img.objNr == ref.ObjNr {
			return img.decode()
		}
	}
	return surface.Pixmap{}, fmt.Errorf("image %s (obj %d) not on page %d", ref.Name, ref.ObjNr, p.number)
}

// pageSize resolves the MediaBox, walking up the page tree since the entry
// is inheritable.
func pageSize(p pdflib.Page) (width, height float64) {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Len() != 4 {
			continue
		}
		w := box.Index(2).Float64() - box.Index(0).Float64()
		h := box.Index(3).Float64() - box.Index(1).Float64()
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return defaultPageWidth, defaultPageHeight
}
