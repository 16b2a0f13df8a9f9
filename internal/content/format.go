package content

import (
	"errors"
	"regexp"
)

// Style is a markup decoration applied by Format.
type Style int

const (
	Bold Style = iota
	Italic
	Underline
	Color
)

// ErrInvalidColor is returned when a color is not a #rgb or #rrggbb value.
var ErrInvalidColor = errors.New("invalid color")

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Format wraps the runes in [start, end) of text with the markup tokens for st.
// color is only read for Color. An empty selection returns text unchanged.
func Format(text string, start, end int, st Style, color string) (string, error) {
	r := []rune(text)
	start = clamp(start, 0, len(r))
	end = clamp(end, 0, len(r))
	if start > end {
		start, end = end, start
	}
	if start == end {
		return text, nil
	}

	var open, closer string
	switch st {
	case Bold:
		open, closer = "*", "*"
	case Italic:
		open, closer = "~", "~"
	case Underline:
		open, closer = "_", "_"
	case Color:
		if !hexColor.MatchString(color) {
			return "", ErrInvalidColor
		}
		open, closer = "|COLOR:"+color+"|", "|ENDCOLOR|"
	}
	return string(r[:start]) + open + string(r[start:end]) + closer + string(r[end:]), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
