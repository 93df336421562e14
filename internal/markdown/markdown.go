// Package markdown finds the parts of a markdown document that hold box
// diagrams, so that prose, tables and source code are left alone.
package markdown

import (
	"regexp"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jensroland/fix-ascii-art/internal/boxchar"
	"github.com/jensroland/fix-ascii-art/internal/boxfix"
)

// maxGap is the number of non-box lines an auto-detected region may bridge,
// e.g. the arrow and label between two stacked boxes.
const maxGap = 2

// tableSeparator matches the delimiter row of a GFM table.
var tableSeparator = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)+\|?\s*$`)

// Options controls region detection.
type Options struct {
	// SkipCodeFences leaves fences tagged with a programming language
	// (```go, ```python) untouched.
	SkipCodeFences bool
}

func DefaultOptions() Options {
	return Options{SkipCodeFences: true}
}

// Regions returns the line ranges of lines that should be handed to the
// fixer: code blocks containing box characters, and clusters of box lines in
// the body of the document. Ranges are sorted and do not overlap.
func Regions(lines []string, opts Options) []boxfix.LineRange {
	if len(lines) == 0 {
		return nil
	}

	excluded := make([]bool, len(lines))
	regions := codeRegions(lines, opts, excluded)
	markTables(lines, excluded)
	regions = append(regions, clusters(lines, excluded)...)

	sort.Slice(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })
	return regions
}

// codeRegions walks the goldmark AST for fenced and indented code blocks.
// Every line a block covers is marked excluded so body clustering never
// reaches into it.
func codeRegions(lines []string, opts Options, excluded []bool) []boxfix.LineRange {
	src := []byte(strings.Join(lines, "\n"))
	starts := lineStarts(lines)
	lineOf := func(off int) int {
		return sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var regions []boxfix.LineRange
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		var skip bool
		switch b := n.(type) {
		case *ast.FencedCodeBlock:
			first, last := -1, -1
			if b.Lines().Len() > 0 {
				first = lineOf(b.Lines().At(0).Start)
				last = lineOf(b.Lines().At(b.Lines().Len() - 1).Start)
			}
			open := first - 1
			if b.Info != nil {
				open = lineOf(b.Info.Segment.Start)
			}
			if open >= 0 {
				excluded[open] = true
			}
			if last >= 0 && last+1 < len(lines) && isFence(lines[last+1]) {
				excluded[last+1] = true
			}
			skip = opts.SkipCodeFences && isSourceCode(b.Language(src))
		case *ast.CodeBlock:
		default:
			return ast.WalkContinue, nil
		}

		segs := n.Lines()
		if segs.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		first := lineOf(segs.At(0).Start)
		last := lineOf(segs.At(segs.Len() - 1).Start)
		boxes := false
		for i := first; i <= last; i++ {
			excluded[i] = true
			if boxchar.HasBoxChars(lines[i]) {
				boxes = true
			}
		}
		if boxes && !skip {
			regions = append(regions, boxfix.LineRange{Start: first, End: last})
		}
		return ast.WalkSkipChildren, nil
	})
	return regions
}

func lineStarts(lines []string) []int {
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l) + 1
	}
	return starts
}

func isFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

// isSourceCode reports whether a fence info word names a programming
// language. Diagram-ish tags (text, ascii, plaintext) and unknown tags are
// not source code.
func isSourceCode(info []byte) bool {
	if len(info) == 0 {
		return false
	}
	lang, ok := enry.GetLanguageByAlias(string(info))
	if !ok {
		return false
	}
	return enry.GetLanguageType(lang) == enry.Programming
}

// markTables excludes GFM tables: the delimiter row and the pipe rows
// directly above and below it.
func markTables(lines []string, excluded []bool) {
	for i, l := range lines {
		if excluded[i] || !tableSeparator.MatchString(l) {
			continue
		}
		excluded[i] = true
		for j := i - 1; j >= 0 && isTableRow(lines[j]) && !excluded[j]; j-- {
			excluded[j] = true
		}
		for j := i + 1; j < len(lines) && isTableRow(lines[j]) && !excluded[j]; j++ {
			excluded[j] = true
		}
	}
}

func isTableRow(line string) bool {
	return strings.Contains(strings.TrimSpace(line), "|")
}

// clusters groups body lines that contain box characters. A cluster bridges
// up to maxGap plain lines but ends at any excluded line.
func clusters(lines []string, excluded []bool) []boxfix.LineRange {
	var out []boxfix.LineRange
	open := false
	var cur boxfix.LineRange
	for i, l := range lines {
		if excluded[i] {
			if open {
				out = append(out, cur)
				open = false
			}
			continue
		}
		if !boxchar.HasBoxChars(l) {
			continue
		}
		if open && i-cur.End <= maxGap+1 {
			cur.End = i
			continue
		}
		if open {
			out = append(out, cur)
		}
		cur = boxfix.LineRange{Start: i, End: i}
		open = true
	}
	if open {
		out = append(out, cur)
	}
	return out
}
