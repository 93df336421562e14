// Package lineset handles sets of 1-based line numbers in the compact
// "5,7-8,12" notation used by the -L flag and the fix journal.
package lineset

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Run is an inclusive range of 1-based line numbers.
type Run struct {
	Start int
	End   int
}

// LineSet is a set of 1-based line numbers stored as sorted, disjoint,
// non-adjacent runs.
type LineSet struct {
	runs []Run
}

// New creates a LineSet from individual line numbers.
func New(lines ...int) LineSet {
	runs := make([]Run, 0, len(lines))
	for _, n := range lines {
		runs = append(runs, Run{n, n})
	}
	return fromRuns(runs)
}

// FromRange creates a LineSet covering [start, end].
func FromRange(start, end int) LineSet {
	if start <= 0 || end < start {
		return LineSet{}
	}
	return LineSet{runs: []Run{{start, end}}}
}

// FromIndices converts 0-based line indices into a LineSet.
func FromIndices(indices []int) LineSet {
	runs := make([]Run, 0, len(indices))
	for _, i := range indices {
		runs = append(runs, Run{i + 1, i + 1})
	}
	return fromRuns(runs)
}

// FromString parses "5", "5-7", "5:7" or "5,7-8,12".
func FromString(s string) (LineSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LineSet{}, nil
	}

	var runs []Run
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.IndexAny(part, "-:")
		if idx < 0 {
			n, err := parseLine(part)
			if err != nil {
				return LineSet{}, err
			}
			runs = append(runs, Run{n, n})
			continue
		}
		start, err := parseLine(part[:idx])
		if err != nil {
			return LineSet{}, fmt.Errorf("invalid range start: %w", err)
		}
		end, err := parseLine(part[idx+1:])
		if err != nil {
			return LineSet{}, fmt.Errorf("invalid range end: %w", err)
		}
		if end < start {
			return LineSet{}, fmt.Errorf("invalid range %d-%d", start, end)
		}
		runs = append(runs, Run{start, end})
	}
	return fromRuns(runs), nil
}

func parseLine(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid line number %q", strings.TrimSpace(s))
	}
	if n <= 0 {
		return 0, fmt.Errorf("line numbers start at 1, got %d", n)
	}
	return n, nil
}

func fromRuns(runs []Run) LineSet {
	if len(runs) == 0 {
		return LineSet{}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Start < runs[j].Start })
	out := []Run{runs[0]}
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return LineSet{runs: out}
}

// String returns the compact notation: "5,7-8,12".
func (ls LineSet) String() string {
	parts := make([]string, 0, len(ls.runs))
	for _, r := range ls.runs {
		if r.Start == r.End {
			parts = append(parts, strconv.Itoa(r.Start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Start, r.End))
		}
	}
	return strings.Join(parts, ",")
}

func (ls LineSet) IsEmpty() bool {
	return len(ls.runs) == 0
}

// Runs returns the set as sorted inclusive ranges.
func (ls LineSet) Runs() []Run {
	return ls.runs
}

// Len returns the number of lines in the set.
func (ls LineSet) Len() int {
	n := 0
	for _, r := range ls.runs {
		n += r.End - r.Start + 1
	}
	return n
}

// Min returns the smallest line number, or 0 if empty.
func (ls LineSet) Min() int {
	if len(ls.runs) == 0 {
		return 0
	}
	return ls.runs[0].Start
}

// Max returns the largest line number, or 0 if empty.
func (ls LineSet) Max() int {
	if len(ls.runs) == 0 {
		return 0
	}
	return ls.runs[len(ls.runs)-1].End
}

func (ls LineSet) Contains(line int) bool {
	i := sort.Search(len(ls.runs), func(i int) bool { return ls.runs[i].End >= line })
	return i < len(ls.runs) && ls.runs[i].Start <= line
}

// MarshalJSON serializes as a JSON string in compact notation.
func (ls LineSet) MarshalJSON() ([]byte, error) {
	if ls.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(ls.String())
}

// Value stores the set as its compact notation.
func (ls LineSet) Value() (driver.Value, error) {
	return ls.String(), nil
}

// Scan reads the compact notation back from a TEXT column.
func (ls *LineSet) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		*ls = LineSet{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("lineset: cannot scan %T", src)
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*ls = parsed
	return nil
}
