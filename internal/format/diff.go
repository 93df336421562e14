package format

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	// diffContext is the number of unchanged lines kept around each change.
	diffContext = 2
	maxDiffRows = 60
)

type rowKind int

const (
	rowEqual rowKind = iota
	rowDelete
	rowInsert
	rowReplace
	rowElided
)

type diffRow struct {
	kind        rowKind
	left, right string
	oldN, newN  int // 1-based line numbers, 0 when absent
	skipped     int // for rowElided
}

// FormatSideBySideDiff renders a side-by-side, line-level diff of a fix with
// box-drawing borders. Long unchanged stretches are elided.
func FormatSideBySideDiff(oldText, newText string, tabWidth int) string {
	return sideBySide(oldText, newText, TermWidth(), tabWidth)
}

func sideBySide(oldText, newText string, termWidth, tabWidth int) string {
	colW := (termWidth - 7) / 2
	if colW < 20 {
		colW = 20
	}

	rows := elide(diffRows(expandTabs(oldText, tabWidth), expandTabs(newText, tabWidth)))
	total := len(rows)
	if total > maxDiffRows {
		rows = rows[:maxDiffRows]
	}

	output := []string{topBorder([]string{"Before", "After"}, []int{colW, colW}, "┬")}
	blank := strings.Repeat(" ", colW)
	for _, r := range rows {
		left := padOrTrunc(numbered(r.oldN, r.left), colW)
		right := padOrTrunc(numbered(r.newN, r.right), colW)

		switch r.kind {
		case rowEqual:
			output = append(output, fmt.Sprintf("│ %s%s%s │ %s%s%s │", Dim, left, Reset, Dim, right, Reset))
		case rowDelete:
			output = append(output, fmt.Sprintf("│ %s%s%s │ %s │", Red, left, Reset, blank))
		case rowInsert:
			output = append(output, fmt.Sprintf("│ %s │ %s%s%s │", blank, Green, right, Reset))
		case rowReplace:
			output = append(output, fmt.Sprintf("│ %s%s%s │ %s%s%s │", Red, left, Reset, Green, right, Reset))
		case rowElided:
			note := padOrTrunc(fmt.Sprintf("⋯ %d unchanged", r.skipped), colW)
			output = append(output, fmt.Sprintf("│ %s%s%s │ %s%s%s │", Dim, note, Reset, Dim, note, Reset))
		}
	}
	output = append(output, "└"+strings.Repeat("─", colW+2)+"┴"+strings.Repeat("─", colW+2)+"┘")

	if total > maxDiffRows {
		output = append(output, fmt.Sprintf("  %s… %d more rows not shown%s", Dim, total-maxDiffRows, Reset))
	}
	return strings.Join(output, "\n")
}

func numbered(n int, s string) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%4d %s", n, s)
}

// diffRows runs a line-mode diff and pairs each run of deletions with the
// insertions that follow it.
func diffRows(oldLines, newLines []string) []diffRow {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(joinLines(oldLines), joinLines(newLines))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var rows []diffRow
	var dels, ins []string
	oldN, newN := 1, 1

	flush := func() {
		n := len(dels)
		if len(ins) > n {
			n = len(ins)
		}
		for i := 0; i < n; i++ {
			r := diffRow{kind: rowReplace}
			if i < len(dels) {
				r.left, r.oldN = dels[i], oldN
				oldN++
			} else {
				r.kind = rowInsert
			}
			if i < len(ins) {
				r.right, r.newN = ins[i], newN
				newN++
			} else {
				r.kind = rowDelete
			}
			rows = append(rows, r)
		}
		dels, ins = nil, nil
	}

	for _, d := range diffs {
		lines := splitDiffText(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			for _, l := range lines {
				rows = append(rows, diffRow{kind: rowEqual, left: l, right: l, oldN: oldN, newN: newN})
				oldN++
				newN++
			}
		case diffmatchpatch.DiffDelete:
			dels = append(dels, lines...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, lines...)
		}
	}
	flush()
	return rows
}

// elide replaces unchanged stretches longer than twice diffContext with a
// single marker row.
func elide(rows []diffRow) []diffRow {
	var out []diffRow
	for i := 0; i < len(rows); {
		if rows[i].kind != rowEqual {
			out = append(out, rows[i])
			i++
			continue
		}
		j := i
		for j < len(rows) && rows[j].kind == rowEqual {
			j++
		}
		keepHead, keepTail := diffContext, diffContext
		if i == 0 {
			keepHead = 0
		}
		if j == len(rows) {
			keepTail = 0
		}
		if j-i <= keepHead+keepTail+1 {
			out = append(out, rows[i:j]...)
		} else {
			out = append(out, rows[i:i+keepHead]...)
			out = append(out, diffRow{kind: rowElided, skipped: j - i - keepHead - keepTail})
			out = append(out, rows[j-keepTail:j]...)
		}
		i = j
	}
	return out
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func splitDiffText(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// expandTabs splits text into lines and replaces tabs with spaces up to the
// next tab stop.
func expandTabs(text string, tabWidth int) []string {
	if text == "" {
		return nil
	}
	if tabWidth <= 0 {
		tabWidth = 8
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if !strings.Contains(line, "\t") {
			continue
		}
		var b strings.Builder
		col := 0
		for _, r := range line {
			if r == '\t' {
				n := tabWidth - col%tabWidth
				b.WriteString(strings.Repeat(" ", n))
				col += n
				continue
			}
			b.WriteRune(r)
			col += widths.RuneWidth(r)
		}
		lines[i] = b.String()
	}
	return lines
}
