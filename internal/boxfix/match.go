package boxfix

import (
	"sort"

	"github.com/jensroland/fix-ascii-art/internal/boxchar"
)

// Region is a box: a top and bottom border sharing left column and width.
type Region struct {
	Top    Segment
	Bottom Segment
	Depth  int // number of regions strictly containing this one
}

// Left is the display column of the box's left edge.
func (r Region) Left() int { return r.Top.Start }

// Width is the drawn width of the box including both edges.
func (r Region) Width() int { return r.Top.Width() }

// RightCol is the column every content line's right border must occupy.
func (r Region) RightCol() int { return r.Left() + r.Width() - 1 }

// contains reports whether o lies strictly inside r, by lines and columns.
func (r Region) contains(o Region) bool {
	return r.Top.Line < o.Top.Line && o.Bottom.Line < r.Bottom.Line &&
		r.Left() < o.Left() && o.RightCol() < r.RightCol()
}

// Match pairs each border segment with the nearest following segment of the
// same geometry. A segment consumed as a bottom only opens another box when
// it is a shared divider, i.e. the box visibly continues on the next line.
func Match(segs []Segment, lines []string, opts Options) []Region {
	opts = opts.withDefaults()

	sorted := make([]Segment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line < sorted[j].Line
		}
		return sorted[i].Start < sorted[j].Start
	})

	bottom := make([]bool, len(sorted))
	var regions []Region
	for i, top := range sorted {
		if bottom[i] && !continuesBelow(top, lines, opts) {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			cand := sorted[j]
			if bottom[j] || cand.Line == top.Line {
				continue
			}
			if cand.Start == top.Start && cand.End == top.End {
				regions = append(regions, Region{Top: top, Bottom: cand})
				bottom[j] = true
				break
			}
		}
	}
	return regions
}

// continuesBelow reports whether the line under seg looks like the first
// content line of a box with seg's geometry: a vertical border at the left
// edge and another one within drift of the right edge.
func continuesBelow(seg Segment, lines []string, opts Options) bool {
	next := seg.Line + 1
	if next >= len(lines) {
		return false
	}
	l := layoutLine(lines[next], opts.TabWidth)
	left := l.indexAt(seg.Start)
	if left < 0 || !boxchar.IsVertical(l.cells[left].r) {
		return false
	}
	for _, c := range l.cells[left+1:] {
		if boxchar.IsVertical(c.r) && abs(c.col-seg.End) <= opts.DriftRadius {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
