package boxchar

import "strings"

// arrows are normalized alongside box drawing so a normalized diagram is
// plain ASCII end to end.
var arrows = map[rune]string{
	'→': "->",
	'←': "<-",
	'↑': "^",
	'↓': "v",
	'▶': ">",
	'◀': "<",
	'⟶': "-->",
	'⟵': "<--",
	'⇒': "=>",
	'⇐': "<=",
	'▼': "v",
	'▲': "^",
}

// Normalize returns the ASCII equivalent of r: corners become "+", fills "-",
// verticals "|", arrows their ASCII spelling. Anything else maps to itself.
func Normalize(r rune) string {
	if s, ok := arrows[r]; ok {
		return s
	}
	switch classes[r] {
	case Corner:
		return "+"
	case HorizontalFill:
		return "-"
	case VerticalBorder:
		return "|"
	}
	return string(r)
}

// NormalizeString applies Normalize to every rune of s.
func NormalizeString(s string) string {
	if !needsNormalize(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteString(Normalize(r))
	}
	return b.String()
}

func needsNormalize(s string) bool {
	for _, r := range s {
		if r < 0x80 {
			continue
		}
		if _, ok := arrows[r]; ok {
			return true
		}
		if classes[r] != Other {
			return true
		}
	}
	return false
}
