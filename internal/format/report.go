package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jensroland/fix-ascii-art/internal/boxfix"
	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/record"
)

// FormatEntry renders a journal entry as a header line plus the first
// changed line, for history listings.
func FormatEntry(e *record.Entry, root string) string {
	header := Dim + fmt.Sprintf("#%d", e.ID) + Reset +
		" " + Cyan + humanize.Time(e.Ts) + Reset +
		"  " + Bold + record.RelativizePath(e.File, root) + Reset
	if !e.Lines.IsEmpty() {
		header += " " + Dim + "L" + e.Lines.String() + Reset
	}
	header += fmt.Sprintf(" %s(%s, %s)%s", Dim, plural(e.Regions, "box", "boxes"), e.Source, Reset)
	if e.Undone {
		header += " " + Yellow + "undone" + Reset
	}

	parts := []string{header}
	if s := e.ChangeSummary(60); s != "" {
		parts = append(parts, "  "+Magenta+"Change:"+Reset+" "+s)
	}
	return strings.Join(parts, "\n")
}

// FormatEntryDetail renders a single entry with its metadata box and a
// side-by-side diff.
func FormatEntryDetail(e *record.Entry, root string, tabWidth int) string {
	meta := []string{
		"File:    " + record.RelativizePath(e.File, root),
		"Run:     " + e.RunID,
		"When:    " + e.Ts.Local().Format(time.DateTime) + " (" + humanize.Time(e.Ts) + ")",
		"Source:  " + e.Source,
		"Lines:   " + e.Lines.String(),
		fmt.Sprintf("Boxes:   %d", e.Regions),
		"Hash:    " + e.BeforeHash + " → " + e.AfterHash,
	}
	if e.Undone {
		meta = append(meta, "Status:  undone")
	}
	return FormatBorderedText(strings.Join(meta, "\n"), fmt.Sprintf("Fix #%d", e.ID)) +
		"\n" + FormatSideBySideDiff(e.Before, e.After, tabWidth)
}

// FormatResult is the one-line summary printed for a processed file.
func FormatResult(name string, rep boxfix.Report, check bool) string {
	if !rep.Changed() {
		return fmt.Sprintf("%s%s: ok%s", Dim, name, Reset)
	}
	verb := "fixed"
	color := Green
	if check {
		verb = "would fix"
		color = Yellow
	}
	return fmt.Sprintf("%s%s%s %s: %s in %s", color, verb, Reset, name,
		plural(len(rep.Lines), "line", "lines"), plural(rep.Regions, "box", "boxes"))
}

// FormatStats renders journal statistics.
func FormatStats(s journal.Stats, root string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sfix-ascii-art statistics%s\n\n", Bold, Reset)
	fmt.Fprintf(&b, "  Fixes recorded: %s\n", humanize.Comma(int64(s.Entries)))
	fmt.Fprintf(&b, "  Runs:           %s\n", humanize.Comma(int64(s.Runs)))
	fmt.Fprintf(&b, "  Files touched:  %s\n", humanize.Comma(int64(s.Files)))
	fmt.Fprintf(&b, "  Lines aligned:  %s\n", humanize.Comma(int64(s.LinesFixed)))
	fmt.Fprintf(&b, "  Undone:         %s\n", humanize.Comma(int64(s.Undone)))
	fmt.Fprintf(&b, "  First fix:      %s\n", when(s.First))
	fmt.Fprintf(&b, "  Last fix:       %s\n", when(s.Last))

	if len(s.BySource) > 0 {
		fmt.Fprintf(&b, "\n  %sBy source:%s\n", Bold, Reset)
		for _, c := range s.BySource {
			fmt.Fprintf(&b, "    %4d  %s\n", c.Count, c.Name)
		}
	}
	if len(s.TopFiles) > 0 {
		fmt.Fprintf(&b, "\n  %sMost fixed files:%s\n", Bold, Reset)
		for _, c := range s.TopFiles {
			fmt.Fprintf(&b, "    %4d  %s\n", c.Count, record.RelativizePath(c.Name, root))
		}
	}
	return b.String()
}

func when(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return humanize.Time(t)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
