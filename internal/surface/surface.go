// Package surface defines the capabilities the extraction core consumes from
// PDF, rendering and OCR backends. Concrete engines live in other packages and
// can be swapped without touching the extraction logic.
package surface

import (
	"context"
	"image"
)

// Metadata keys understood by Document.Metadata.
const (
	MetaTitle        = "title"
	MetaAuthor       = "author"
	MetaCreationDate = "creationDate"
)

// BBox is a rectangle in page space with the origin at the top-left corner
// and y growing downward, so Y0 is the top edge and Y1 the bottom edge.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// TextBlock is a run of lines the backend considers one block.
type TextBlock struct {
	BBox BBox
	Text string
}

// Region is a detected table area with its extracted cell grid.
type Region struct {
	BBox BBox
	Grid [][]string
}

// ImageRef identifies an embedded raster image on a page.
type ImageRef struct {
	Name  string
	ObjNr int
}

// Pixmap is a materialised image together with the PDF colour space it was
// stored in (DeviceGray, DeviceRGB, DeviceCMYK, ICCBased, Indexed, ...).
type Pixmap struct {
	Image      image.Image
	ColorSpace string
}

// Opener opens a document by path.
type Opener interface {
	Open(path string) (Document, error)
}

// Document is an open PDF. It must be closed by the caller.
type Document interface {
	// Metadata returns the document info entries that are present. Missing
	// keys are simply absent from the map.
	Metadata() (map[string]string, error)
	PageCount() int
	// Page returns the page at a 0-based index.
	Page(index int) (Page, error)
	Close() error
}

// Page exposes the extraction capabilities of one page.
type Page interface {
	Text() (string, error)
	TextBlocks() ([]TextBlock, error)
	DetectTables() ([]Region, error)
	ImageRefs() ([]ImageRef, error)
	Pixmap(ref ImageRef) (Pixmap, error)
}

// Renderer rasterises every page of the document at path.
type Renderer interface {
	Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error)
}

// Recognizer turns an encoded raster image into plain text.
type Recognizer interface {
	Recognize(ctx context.Context, img []byte) (string, error)
}
