// Package parser reads PDF files with ledongthuc/pdf for text and layout and
// pdfcpu for embedded images, and exposes them as surface.Document values.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/surface"
	pdflib "github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for input that does not carry a PDF header.
var ErrNotPDF = errors.New("not a PDF file")

// US Letter, used when a page has no usable MediaBox.
const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// Options tunes layout analysis and table detection.
type Options struct {
	ColumnGap    float64
	MinRows      int
	MinCols      int
	BlockSpacing float64
}

// OptionsFromConfig maps the table detector settings onto parser options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		ColumnGap: cfg.TableColumnGap,
		MinRows:   cfg.TableMinRows,
		MinCols:   cfg.TableMinCols,
	}
}

func (o Options) withDefaults() Options {
	if o.ColumnGap <= 0 {
		o.ColumnGap = 12
	}
	if o.MinRows <= 0 {
		o.MinRows = 2
	}
	if o.MinCols <= 0 {
		o.MinCols = 2
	}
	if o.BlockSpacing <= 0 {
		o.BlockSpacing = 1
	}
	return o
}

// PDFOpener opens PDF files from disk.
type PDFOpener struct {
	Options Options
}

// NewOpener returns a PDFOpener with opts filled in with defaults.
func NewOpener(opts Options) *PDFOpener {
	return &PDFOpener{Options: opts.withDefaults()}
}

// Open implements surface.Opener.
func (o *PDFOpener) Open(path string) (surface.Document, error) {
	if err := checkHeader(path); err != nil {
		return nil, err
	}

	var (
		f      *os.File
		reader *pdflib.Reader
	)
	err := recoverErr(func() error {
		var err error
		f, reader, err = pdflib.Open(path)
		return err
	})
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	return &pdfDocument{
		path:   path,
		file:   f,
		reader: reader,
		opts:   o.Options.withDefaults(),
		images: &imageSource{path: path},
	}, nil
}

type pdfDocument struct {
	path   string
	file   *os.File
	reader *pdflib.Reader
	opts   Options
	images *imageSource

	closeOnce sync.Once
	closeErr  error
}

// Metadata reads Title, Author and CreationDate from the Info dictionary.
func (d *pdfDocument) Metadata() (meta map[string]string, err error) {
	meta = make(map[string]string)
	err = recoverErr(func() error {
		info := d.reader.Trailer().Key("Info")
		if info.IsNull() {
			return nil
		}
		for key, field := range map[string]string{
			surface.MetaTitle:        "Title",
			surface.MetaAuthor:       "Author",
			surface.MetaCreationDate: "CreationDate",
		} {
			if v := info.Key(field).Text(); v != "" {
				meta[key] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (d *pdfDocument) PageCount() int {
	n := 0
	_ = recoverErr(func() error {
		n = d.reader.NumPage()
		return nil
	})
	return n
}

func (d *pdfDocument) Page(index int) (surface.Page, error) {
	var p pdflib.Page
	err := recoverErr(func() error {
		p = d.reader.Page(index + 1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d not found", index+1)
	}
	return &pdfPage{
		number: index + 1,
		page:   p,
		opts:   d.opts,
		images: d.images,
	}, nil
}

func (d *pdfDocument) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.file.Close()
	})
	return d.closeErr
}

func checkHeader(path string) error {
	ok, err := HasPDFHeader(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNotPDF)
	}
	return nil
}

// HasPDFHeader looks for the %PDF- marker in the first kilobyte of the file,
// the window readers are required to tolerate leading garbage in.
func HasPDFHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read header: %w", err)
	}
	return IsPDF(head[:n]), nil
}

// IsPDF reports whether head contains a PDF header.
func IsPDF(head []byte) bool {
	return bytes.Contains(head, []byte("%PDF-"))
}

// StageTemp copies r into a temporary .pdf file. ledongthuc/pdf and pdfcpu
// both need random access, so uploads are staged on disk. The caller removes
// the returned path.
func StageTemp(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "pdfextract-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmpPath, nil
}

// recoverErr runs fn and turns a panic from the PDF reader into an error.
// ledongthuc/pdf reports malformed input by panicking.
func recoverErr(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("malformed pdf: %w", e)
				return
			}
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	return fn()
}
