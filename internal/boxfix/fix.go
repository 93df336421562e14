package boxfix

import (
	"sort"
	"strings"

	"github.com/jensroland/fix-ascii-art/internal/boxchar"
)

const (
	// DefaultDriftRadius is how far, in display columns, a right border may
	// have drifted from its expected column and still be recognised.
	DefaultDriftRadius = 40
	DefaultTabWidth    = 8
)

// LineRange is an inclusive, 0-based range of lines.
type LineRange struct {
	Start int
	End   int
}

// Options controls a fix run. Zero values fall back to the defaults.
type Options struct {
	Normalize   bool
	Ranges      []LineRange // when set, only these ranges are scanned and repaired
	DriftRadius int
	TabWidth    int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{DriftRadius: DefaultDriftRadius, TabWidth: DefaultTabWidth}
}

func (o Options) withDefaults() Options {
	if o.DriftRadius <= 0 {
		o.DriftRadius = DefaultDriftRadius
	}
	if o.TabWidth <= 0 {
		o.TabWidth = DefaultTabWidth
	}
	return o
}

// Report summarises what a fix run did.
type Report struct {
	Regions  int   // boxes detected
	Repaired int   // content lines whose right border moved
	Lines    []int // 0-based indices of lines that differ from the input
}

// Changed reports whether any line differs from the input.
func (r Report) Changed() bool {
	return len(r.Lines) > 0
}

// Fix repairs box right borders in lines and returns a new slice of the same
// length. The input slice is not modified.
func Fix(lines []string, opts Options) ([]string, Report) {
	opts = opts.withDefaults()

	out := make([]string, len(lines))
	copy(out, lines)
	if opts.Normalize {
		for i := range out {
			out[i] = boxchar.NormalizeString(out[i])
		}
	}

	var rep Report
	ranges := opts.Ranges
	if len(ranges) == 0 {
		ranges = []LineRange{{Start: 0, End: len(out) - 1}}
	}
	for _, rg := range mergeRanges(ranges, len(out)) {
		fixRange(out, rg, opts, &rep)
	}

	for i := range out {
		if out[i] != lines[i] {
			rep.Lines = append(rep.Lines, i)
		}
	}
	return out, rep
}

func fixRange(lines []string, rg LineRange, opts Options, rep *Report) {
	var segs []Segment
	for i := rg.Start; i <= rg.End; i++ {
		segs = append(segs, ScanLine(lines[i], i, opts.TabWidth)...)
	}
	if len(segs) < 2 {
		return
	}

	regions := Order(Match(segs, lines, opts))
	rep.Regions += len(regions)
	for _, r := range regions {
		for i := r.Top.Line + 1; i < r.Bottom.Line; i++ {
			if fixed, ok := RepairLine(lines[i], r, opts); ok {
				lines[i] = fixed
				rep.Repaired++
			}
		}
	}
}

// mergeRanges clamps ranges to [0, n) and merges overlapping ones.
func mergeRanges(ranges []LineRange, n int) []LineRange {
	var clamped []LineRange
	for _, r := range ranges {
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End > n-1 {
			r.End = n - 1
		}
		if r.Start > r.End {
			continue
		}
		clamped = append(clamped, r)
	}
	sort.Slice(clamped, func(i, j int) bool { return clamped[i].Start < clamped[j].Start })

	var merged []LineRange
	for _, r := range clamped {
		if len(merged) > 0 && r.Start <= merged[len(merged)-1].End {
			if r.End > merged[len(merged)-1].End {
				merged[len(merged)-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Process fixes a whole document. Line endings (LF or CRLF, per line) and the
// presence of a final newline are preserved exactly.
func Process(text string, opts Options) (string, Report) {
	if text == "" {
		return text, Report{}
	}

	lines := strings.Split(text, "\n")
	crlf := make([]bool, len(lines))
	for i, l := range lines {
		if strings.HasSuffix(l, "\r") {
			lines[i] = l[:len(l)-1]
			crlf[i] = true
		}
	}

	fixed, rep := Fix(lines, opts)
	for i := range fixed {
		if crlf[i] {
			fixed[i] += "\r"
		}
	}
	return strings.Join(fixed, "\n"), rep
}

// Lines splits text the way Process does, without line-ending bookkeeping.
// Collaborators computing LineRanges must index lines with it.
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
