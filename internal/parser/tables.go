package parser

import (
	"sort"

	"github.com/dgallion1/pdfextract/internal/surface"
)

// detectTables finds runs of consecutive lines that each split into at least
// MinCols segments. A run of MinRows or more lines becomes a region whose
// columns are the clustered left edges of its segments.
func detectTables(lines []line, opts Options) []surface.Region {
	regions := []surface.Region{}
	start := -1
	for i := 0; i <= len(lines); i++ {
		if i < len(lines) && lines[i].tabular(opts.MinCols) && !tooFar(lines, start, i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= opts.MinRows {
			regions = append(regions, buildRegion(lines[start:i], opts.ColumnGap))
		}
		start = -1
		if i < len(lines) && lines[i].tabular(opts.MinCols) {
			start = i
		}
	}
	return regions
}

// tooFar reports whether line i sits more than three line heights below
// line i-1, which splits two tables that have nothing in between.
func tooFar(lines []line, start, i int) bool {
	if start < 0 || i == 0 {
		return false
	}
	prev := lines[i-1]
	return lines[i].box.Y0-prev.box.Y1 > 3*prev.size
}

func buildRegion(lines []line, columnGap float64) surface.Region {
	var lefts []float64
	for _, l := range lines {
		for _, s := range l.segments {
			lefts = append(lefts, s.box.X0)
		}
	}
	sort.Float64s(lefts)
	tol := columnGap / 2
	bounds := clusterValues(lefts, tol)

	region := surface.Region{BBox: lines[0].box, Grid: make([][]string, 0, len(lines))}
	for _, l := range lines {
		region.BBox = region.BBox.Union(l.box)
		row := make([]string, len(bounds))
		for _, s := range l.segments {
			col := findColumn(s.box.X0, bounds, tol)
			if row[col] != "" {
				row[col] += " " + s.text
			} else {
				row[col] = s.text
			}
		}
		region.Grid = append(region.Grid, row)
	}
	return region
}

// clusterValues merges sorted values closer than tolerance, keeping a running
// average as the cluster centre.
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	clustered := []float64{values[0]}
	for _, v := range values[1:] {
		last := &clustered[len(clustered)-1]
		if v-*last > tolerance {
			clustered = append(clustered, v)
		} else {
			*last = (*last + v) / 2
		}
	}
	return clustered
}

// findColumn returns the last boundary at or left of x, within tolerance.
func findColumn(x float64, bounds []float64, tol float64) int {
	col := 0
	for i, b := range bounds {
		if b <= x+tol {
			col = i
		}
	}
	return col
}
