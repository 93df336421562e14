package boxfix

import (
	"strings"

	"github.com/jensroland/fix-ascii-art/internal/boxchar"
)

// RepairLine moves the right border of a content line of r to r.RightCol().
// The line must carry a vertical border at r.Left(); the right border is the
// vertical nearest the expected column within opts.DriftRadius (leftmost on a
// tie). Padding before it is rewritten with spaces. Lines that do not qualify,
// are already aligned, or whose content overruns the expected column come back
// unchanged with ok == false.
func RepairLine(line string, r Region, opts Options) (string, bool) {
	opts = opts.withDefaults()
	l := layoutLine(line, opts.TabWidth)

	left := l.indexAt(r.Left())
	if left < 0 || !boxchar.IsVertical(l.cells[left].r) {
		return line, false
	}

	expected := r.RightCol()
	found, best := -1, 0
	for i := left + 1; i < len(l.cells); i++ {
		c := l.cells[i]
		if !boxchar.IsVertical(c.r) {
			continue
		}
		d := abs(c.col - expected)
		if d > opts.DriftRadius {
			if c.col > expected {
				break
			}
			continue
		}
		if found >= 0 && d >= best {
			break
		}
		found, best = i, d
	}
	if found < 0 || l.cells[found].col == expected {
		return line, false
	}

	// first padding cell before the border
	pad := found
	for pad > left+1 && isPadding(l.cells[pad-1].r) {
		pad--
	}
	contentEnd := l.cells[pad-1].col + l.cells[pad-1].width
	if contentEnd > expected {
		return line, false
	}

	var b strings.Builder
	b.Grow(len(line) + expected - contentEnd)
	b.WriteString(line[:l.cells[pad].off])
	b.WriteString(strings.Repeat(" ", expected-contentEnd))
	b.WriteString(line[l.cells[found].off:])
	fixed := b.String()
	return fixed, fixed != line
}

func isPadding(r rune) bool {
	return r == ' ' || r == '\t'
}
