package format

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// widths matches the fixer's column model: ambiguous-width runes, which
// include the box-drawing block, are narrow.
var widths = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// FormatBorderedText renders text inside a bordered box sized to the
// terminal, wrapping long paragraphs.
func FormatBorderedText(text, title string) string {
	return borderedText(text, title, TermWidth()-4)
}

func borderedText(text, title string, innerW int) string {
	if innerW < 30 {
		innerW = 30
	}

	var wrapped []string
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			wrapped = append(wrapped, "")
			continue
		}
		wrapped = append(wrapped, wordWrap(paragraph, innerW)...)
	}

	output := []string{topBorder([]string{title}, []int{innerW}, "┬")}
	for _, line := range wrapped {
		output = append(output, fmt.Sprintf("│ %s │", padOrTrunc(line, innerW)))
	}
	output = append(output, "└"+strings.Repeat("─", innerW+2)+"┘")
	return strings.Join(output, "\n")
}

// topBorder draws "┌─ label ──┬─ label ──┐" with one column per width.
func topBorder(labels []string, cols []int, sep string) string {
	var b strings.Builder
	b.WriteString("┌")
	for i, w := range cols {
		if i > 0 {
			b.WriteString(sep)
		}
		lbl := ""
		if labels[i] != "" {
			lbl = widths.Truncate("─ "+labels[i]+" ", w+2, "")
		}
		b.WriteString(lbl)
		b.WriteString(strings.Repeat("─", w+2-widths.StringWidth(lbl)))
	}
	b.WriteString("┐")
	return b.String()
}

// wordWrap wraps text to the given display width, breaking at word
// boundaries. A word wider than width gets a line of its own.
func wordWrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if widths.StringWidth(current)+1+widths.StringWidth(word) <= width {
			current += " " + word
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// padOrTrunc fits s into exactly w display columns.
func padOrTrunc(s string, w int) string {
	return widths.FillRight(widths.Truncate(s, w, ""), w)
}
