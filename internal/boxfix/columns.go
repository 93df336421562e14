package boxfix

import (
	"github.com/mattn/go-runewidth"
)

// widths treats East Asian ambiguous runes (which include the box-drawing
// block) as narrow, matching how diagrams are drawn in practice.
var widths = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// cell is one rune of a line placed on the terminal grid.
type cell struct {
	r     rune
	col   int // display column the rune starts at
	width int // display columns occupied
	off   int // byte offset in the line
}

type layout struct {
	cells []cell
	width int
}

// layoutLine places every rune of line on the display grid. Tabs advance to
// the next multiple of tabWidth.
func layoutLine(line string, tabWidth int) layout {
	var l layout
	col := 0
	for off, r := range line {
		w := 0
		if r == '\t' {
			w = tabWidth - col%tabWidth
		} else {
			w = widths.RuneWidth(r)
		}
		l.cells = append(l.cells, cell{r: r, col: col, width: w, off: off})
		col += w
	}
	l.width = col
	return l
}

// indexAt returns the index of the cell starting exactly at col, or -1.
// Zero-width cells never match.
func (l layout) indexAt(col int) int {
	for i, c := range l.cells {
		if c.col == col && c.width > 0 {
			return i
		}
		if c.col > col {
			break
		}
	}
	return -1
}

// DisplayWidth returns the number of terminal columns s occupies.
func DisplayWidth(s string, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return layoutLine(s, tabWidth).width
}
