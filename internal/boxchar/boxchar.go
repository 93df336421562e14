package boxchar

// Class is the role a rune plays in a box diagram.
type Class int

const (
	Other Class = iota
	Corner
	HorizontalFill
	VerticalBorder
)

func (c Class) String() string {
	switch c {
	case Corner:
		return "corner"
	case HorizontalFill:
		return "fill"
	case VerticalBorder:
		return "vertical"
	default:
		return "other"
	}
}

const (
	cornerRunes = "+" +
		"┌┐└┘├┤┬┴┼" +
		"╔╗╚╝╠╣╦╩╬" +
		"╭╮╰╯" +
		"┏┓┗┛" +
		"╒╕╘╛╓╖╙╜╞╡╤╧╪╟╢╥╨╫" +
		"┍┎┑┒┕┖┙┚┝┞┟┠┡┢┥┦┧┨┩┪┭┮┯┰┱┲┵┶┷┸┹┺┽┾┿"
	fillRunes     = "-─━═┄┅┈┉"
	verticalRunes = "|│║┃┆┇┊┋"
)

var classes = buildClasses()

func buildClasses() map[rune]Class {
	m := make(map[rune]Class, 128)
	for _, r := range cornerRunes {
		m[r] = Corner
	}
	for _, r := range fillRunes {
		m[r] = HorizontalFill
	}
	for _, r := range verticalRunes {
		m[r] = VerticalBorder
	}
	return m
}

// Classify returns the class of r. Runes outside the tables are Other.
func Classify(r rune) Class {
	return classes[r]
}

func IsCorner(r rune) bool   { return classes[r] == Corner }
func IsFill(r rune) bool     { return classes[r] == HorizontalFill }
func IsVertical(r rune) bool { return classes[r] == VerticalBorder }

// HasBoxChars reports whether s contains any corner, fill or vertical rune.
func HasBoxChars(s string) bool {
	for _, r := range s {
		if classes[r] != Other {
			return true
		}
	}
	return false
}
