// Package fixfile applies the box fixer to whole documents and files on
// disk, choosing the lines to scan from the config and the file type, and
// records rewrites in the journal.
package fixfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jensroland/fix-ascii-art/internal/boxfix"
	"github.com/jensroland/fix-ascii-art/internal/config"
	"github.com/jensroland/fix-ascii-art/internal/journal"
	"github.com/jensroland/fix-ascii-art/internal/lineset"
	"github.com/jensroland/fix-ascii-art/internal/markdown"
	"github.com/jensroland/fix-ascii-art/internal/record"
)

// Settings selects how one document is fixed.
type Settings struct {
	Config   config.Config
	Markdown bool            // restrict to diagram regions of a markdown document
	Restrict lineset.LineSet // 1-based lines to consider; empty means all
}

// ForPath returns settings for path: markdown mode is on when the config
// asks for it or the extension is a markdown one.
func ForPath(cfg config.Config, path string) Settings {
	return Settings{Config: cfg, Markdown: cfg.Markdown || config.IsMarkdown(path)}
}

// Text fixes one document. The result equals text when nothing applies.
func Text(text string, s Settings) (string, boxfix.Report) {
	opts := s.Config.Options()
	ranges, ok := Ranges(boxfix.Lines(text), s)
	if !ok {
		return text, boxfix.Report{}
	}
	opts.Ranges = ranges
	return boxfix.Process(text, opts)
}

// Ranges computes the 0-based line ranges to scan. ok is false when no line
// qualifies; a nil slice with ok true means the whole document.
func Ranges(lines []string, s Settings) ([]boxfix.LineRange, bool) {
	var restrict []boxfix.LineRange
	for _, r := range s.Restrict.Runs() {
		restrict = append(restrict, boxfix.LineRange{Start: r.Start - 1, End: r.End - 1})
	}

	if !s.Markdown {
		return restrict, true
	}

	mo := markdown.DefaultOptions()
	mo.SkipCodeFences = s.Config.SkipCodeFences
	regions := markdown.Regions(lines, mo)
	if len(restrict) > 0 {
		regions = Intersect(regions, restrict)
	}
	return regions, len(regions) > 0
}

// Intersect returns the overlap of two sorted lists of disjoint ranges.
func Intersect(a, b []boxfix.LineRange) []boxfix.LineRange {
	var out []boxfix.LineRange
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := max(a[i].Start, b[j].Start)
		end := min(a[i].End, b[j].End)
		if start <= end {
			out = append(out, boxfix.LineRange{Start: start, End: end})
		}
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}

// Result is the outcome of fixing one file.
type Result struct {
	Path   string
	Before string
	After  string
	Report boxfix.Report
	Entry  *record.Entry // set when the rewrite was journaled
}

// Changed reports whether the file content differs after the fix.
func (r Result) Changed() bool {
	return r.Before != r.After
}

// Writer rewrites files in place and journals each change under one run ID.
type Writer struct {
	RunID   string
	Source  string
	Journal *journal.Journal // nil disables journaling
	Logger  *slog.Logger
}

// File fixes path in place. With dryRun the file is left untouched and
// nothing is journaled. A journal failure does not undo the write.
func (w *Writer) File(path string, s Settings, dryRun bool) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("%s: is a directory", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}

	before := string(raw)
	after, rep := Text(before, s)
	res := Result{Path: path, Before: before, After: after, Report: rep}
	w.logger().Debug("fixed", "file", path, "regions", rep.Regions, "lines", len(rep.Lines))
	if !res.Changed() || dryRun {
		return res, nil
	}

	if err := os.WriteFile(path, []byte(after), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("write %s: %w", path, err)
	}

	if w.Journal != nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		e := record.New(w.RunID, w.Source, abs, before, after, rep.Lines, rep.Regions)
		if err := w.Journal.Record(e); err != nil {
			w.logger().Warn("journal write failed", "file", path, "err", err)
		} else {
			res.Entry = e
		}
	}
	return res, nil
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}
