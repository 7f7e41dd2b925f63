package parser

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfextract/internal/surface"
	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// glyph is one drawn string converted to top-left page space.
type glyph struct {
	box  surface.BBox
	size float64
	s    string
}

// segment is a run of glyphs on one line with no column-sized gap inside.
type segment struct {
	box  surface.BBox
	text string
}

type line struct {
	box      surface.BBox
	baseline float64
	size     float64
	segments []segment
}

func (l line) text() string {
	parts := make([]string, len(l.segments))
	for i, s := range l.segments {
		parts[i] = s.text
	}
	return strings.Join(parts, " ")
}

func (l line) tabular(minCols int) bool {
	return len(l.segments) >= minCols
}

func toGlyphs(texts []pdflib.Text, pageHeight float64) []glyph {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = 1
		}
		w := t.W
		if w <= 0 {
			w = size * 0.5 * float64(utf8.RuneCountInString(t.S))
		}
		glyphs = append(glyphs, glyph{
			box: surface.BBox{
				X0: t.X,
				Y0: pageHeight - (t.Y + size),
				X1: t.X + w,
				Y1: pageHeight - t.Y,
			},
			size: size,
			s:    t.S,
		})
	}
	return glyphs
}

// buildLines clusters glyphs into reading-order lines. Glyphs share a line
// when their baselines are within 30% of the font size (at least 2pt).
func buildLines(texts []pdflib.Text, pageHeight, columnGap float64) []line {
	glyphs := toGlyphs(texts, pageHeight)
	if len(glyphs) == 0 {
		return nil
	}
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].box.Y1 < glyphs[j].box.Y1
	})

	var groups [][]glyph
	var baseline float64
	for _, g := range glyphs {
		n := len(groups)
		if n > 0 {
			tol := math.Max(2, 0.3*g.size)
			if math.Abs(g.box.Y1-baseline) <= tol {
				groups[n-1] = append(groups[n-1], g)
				continue
			}
		}
		groups = append(groups, []glyph{g})
		baseline = g.box.Y1
	}

	lines := make([]line, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].box.X0 < group[j].box.X0
		})
		lines = append(lines, newLine(group, columnGap))
	}
	return lines
}

func newLine(glyphs []glyph, columnGap float64) line {
	l := line{box: glyphs[0].box, baseline: glyphs[0].box.Y1}

	var (
		cur  segment
		text strings.Builder
		prev glyph
	)
	flush := func() {
		cur.text = text.String()
		l.segments = append(l.segments, cur)
		text.Reset()
	}

	for i, g := range glyphs {
		l.box = l.box.Union(g.box)
		l.size = math.Max(l.size, g.size)
		if i == 0 {
			cur = segment{box: g.box}
			text.WriteString(g.s)
			prev = g
			continue
		}
		gap := g.box.X0 - prev.box.X1
		switch {
		case gap > columnGap:
			flush()
			cur = segment{box: g.box}
		case gap > 0.25*g.size:
			text.WriteByte(' ')
			cur.box = cur.box.Union(g.box)
		default:
			cur.box = cur.box.Union(g.box)
		}
		text.WriteString(g.s)
		prev = g
	}
	flush()
	return l
}

// joinLines renders lines as page text, NFC-normalised.
func joinLines(lines []line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.text()
	}
	return norm.NFC.String(strings.Join(parts, "\n"))
}

// groupBlocks merges consecutive lines into blocks. A block ends when the
// vertical gap to the next line exceeds spacing times the font size, the font
// size changes noticeably, or the line switches between tabular (minCols or
// more segments) and running text. The last rule keeps a caption set at
// normal leading under a table out of the table's block.
func groupBlocks(lines []line, spacing float64, minCols int) []surface.TextBlock {
	if len(lines) == 0 {
		return []surface.TextBlock{}
	}

	var blocks []surface.TextBlock
	start := 0
	for i := 1; i <= len(lines); i++ {
		if i < len(lines) {
			prev, cur := lines[i-1], lines[i]
			gap := cur.box.Y0 - prev.box.Y1
			sameKind := prev.tabular(minCols) == cur.tabular(minCols)
			if sameKind && gap <= spacing*prev.size && math.Abs(cur.size-prev.size) <= 0.5 {
				continue
			}
		}
		blocks = append(blocks, newBlock(lines[start:i]))
		start = i
	}
	return blocks
}

func newBlock(lines []line) surface.TextBlock {
	b := surface.TextBlock{BBox: lines[0].box}
	b.Text = joinLines(lines)
	for _, l := range lines[1:] {
		b.BBox = b.BBox.Union(l.box)
	}
	return b
}
