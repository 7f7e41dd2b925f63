// Package pdftest writes small, valid PDF files for tests. Text is set in
// Helvetica at 10pt with every glyph 5pt wide; images are placed as image
// XObjects and drawn on the page.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Text is a string whose baseline starts at X, Y in PDF user space.
type Text struct {
	X, Y float64
	S    string
}

// Image is an image XObject. Data is written as-is, so it must already be in
// the form Filter describes (raw samples when Filter is empty).
type Image struct {
	Width, Height int
	ColorSpace    string
	Filter        string
	Data          []byte
}

// Page holds the content of one US Letter page.
type Page struct {
	Texts  []Text
	Images []Image
}

// Build returns the bytes of a PDF with the given Info entries and pages.
func Build(info map[string]string, pages ...Page) []byte {
	var objs [][]byte
	add := func(body []byte) int {
		objs = append(objs, body)
		return len(objs)
	}

	catalog := add(nil)
	tree := add(nil)
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	font := add([]byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>"))

	var kids []string
	for _, page := range pages {
		var content strings.Builder
		var xobjects []string
		for i, img := range page.Images {
			ref := add(imageObject(img))
			name := fmt.Sprintf("Im%d", i+1)
			xobjects = append(xobjects, fmt.Sprintf("/%s %d 0 R", name, ref))
			fmt.Fprintf(&content, "q %d 0 0 %d %d %d cm /%s Do Q\n", img.Width*10, img.Height*10, 300, 400+i*100, name)
		}
		for _, t := range page.Texts {
			fmt.Fprintf(&content, "BT /F1 10 Tf %g %g Td (%s) Tj ET\n", t.X, t.Y, t.S)
		}
		stream := add([]byte(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String())))

		resources := fmt.Sprintf("/Font << /F1 %d 0 R >>", font)
		if len(xobjects) > 0 {
			resources += " /XObject << " + strings.Join(xobjects, " ") + " >>"
		}
		pg := add([]byte(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /Resources << %s >> /Contents %d 0 R >>", tree, resources, stream)))
		kids = append(kids, fmt.Sprintf("%d 0 R", pg))
	}
	objs[catalog-1] = []byte(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
	objs[tree-1] = []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", strings.Join(kids, " "), len(kids)))

	infoRef := ""
	if len(info) > 0 {
		var d strings.Builder
		d.WriteString("<<")
		for k, v := range info {
			fmt.Fprintf(&d, " /%s (%s)", k, v)
		}
		d.WriteString(" >>")
		infoRef = fmt.Sprintf(" /Info %d 0 R", add([]byte(d.String())))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, catalog, infoRef, xref)
	return buf.Bytes()
}

func imageObject(img Image) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent 8", img.Width, img.Height, img.ColorSpace)
	if img.Filter != "" {
		fmt.Fprintf(&b, " /Filter /%s", img.Filter)
	}
	fmt.Fprintf(&b, " /Length %d >>\nstream\n", len(img.Data))
	b.Write(img.Data)
	b.WriteString("\nendstream")
	return b.Bytes()
}

// Write builds a PDF into a file under t.TempDir and returns its path.
func Write(t testing.TB, info map[string]string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, Build(info, pages...), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}
