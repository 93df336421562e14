package boxfix

import (
	"github.com/jensroland/fix-ascii-art/internal/boxchar"
)

// Segment is a horizontal border run (corner, fills, corner) on one line.
// Start and End are the display columns of the two corners.
type Segment struct {
	Line  int
	Start int
	End   int
}

// Width is the drawn width including both corners.
func (s Segment) Width() int {
	return s.End - s.Start + 1
}

// ScanLine returns the border segments on line, left to right. A segment
// needs at least one fill between its corners; runs that end in fill are cut
// back to their last corner. Segments never overlap.
func ScanLine(line string, index, tabWidth int) []Segment {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	cells := layoutLine(line, tabWidth).cells

	var segs []Segment
	i := 0
	for i < len(cells) {
		if !boxchar.IsCorner(cells[i].r) {
			i++
			continue
		}
		j := i + 1
		for j < len(cells) && (boxchar.IsFill(cells[j].r) || boxchar.IsCorner(cells[j].r)) {
			j++
		}
		last := j - 1
		for last > i && !boxchar.IsCorner(cells[last].r) {
			last--
		}
		if last > i && hasFill(cells[i+1:last]) {
			segs = append(segs, Segment{Line: index, Start: cells[i].col, End: cells[last].col})
			i = last + 1
			continue
		}
		i++
	}
	return segs
}

func hasFill(cells []cell) bool {
	for _, c := range cells {
		if boxchar.IsFill(c.r) {
			return true
		}
	}
	return false
}
