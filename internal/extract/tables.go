package extract

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/pdfextract/internal/document"
	"github.com/dgallion1/pdfextract/internal/surface"
)

var captionPrefixes = []string{"Table", "Figure"}

// ExtractTables converts the detected regions of a page into logical tables.
// Consecutive regions that resolve to the same name are merged; a repeated
// header that differs from the first one is kept as a data row.
func ExtractTables(page surface.Page) ([]document.Table, error) {
	regions, err := page.DetectTables()
	if err != nil {
		return nil, fmt.Errorf("detect tables: %w", err)
	}
	if len(regions) == 0 {
		return []document.Table{}, nil
	}

	blocks, err := page.TextBlocks()
	if err != nil {
		return nil, fmt.Errorf("text blocks: %w", err)
	}

	acc := tableAccumulator{tables: []document.Table{}}
	for i, region := range regions {
		columns, rows := splitHeader(region.Grid)
		acc = acc.add(resolveName(i, region.BBox, blocks), columns, rows)
	}
	return acc.tables, nil
}

// splitHeader treats the first grid row as the header.
func splitHeader(grid [][]string) (columns []string, rows [][]string) {
	columns = []string{}
	rows = [][]string{}
	if len(grid) > 0 {
		columns = slices.Clone(grid[0])
	}
	if len(grid) > 1 {
		rows = slices.Clone(grid[1:])
	}
	return columns, rows
}

// resolveName returns the first caption-like block below the table, in block
// order, or a synthetic name built from the region index.
func resolveName(index int, table surface.BBox, blocks []surface.TextBlock) string {
	for _, b := range blocks {
		if b.BBox.Y0 <= table.Y1 {
			continue
		}
		text := strings.TrimSpace(b.Text)
		for _, p := range captionPrefixes {
			if strings.HasPrefix(text, p) {
				return text
			}
		}
	}
	return fmt.Sprintf("Extracted Table %d", index+1)
}

// tableAccumulator is the state threaded through the merge fold. The last
// element of tables is the table a same-named region merges into.
type tableAccumulator struct {
	tables   []document.Table
	prevName string
	started  bool
}

func (acc tableAccumulator) add(name string, columns []string, rows [][]string) tableAccumulator {
	if acc.started && name == acc.prevName {
		prev := &acc.tables[len(acc.tables)-1]
		if !slices.Equal(columns, prev.Columns) {
			prev.Rows = append(prev.Rows, columns)
		}
		prev.Rows = append(prev.Rows, rows...)
		return acc
	}

	acc.tables = append(acc.tables, document.NewTable(name, columns, rows))
	acc.prevName = name
	acc.started = true
	return acc
}
