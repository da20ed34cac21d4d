package model

import "strings"

// namedColors are the CSS keywords accepted besides hex notation.
var namedColors = map[string]bool{
	"black": true, "white": true, "gray": true, "red": true, "orange": true,
	"yellow": true, "green": true, "teal": true, "blue": true, "purple": true,
	"pink": true, "brown": true,
}

// ValidColor reports whether c is usable as an event or task color: empty,
// "#rgb", "#rrggbb" or one of a few named colors.
func ValidColor(c string) bool {
	if c == "" || namedColors[strings.ToLower(c)] {
		return true
	}
	if len(c) != 4 && len(c) != 7 || c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
