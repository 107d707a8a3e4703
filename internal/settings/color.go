package settings

import (
	"fmt"
	"image/color"
	"strconv"
)

// ParseColor parses #RGB or #RRGGBB.
func ParseColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	digits := hex[1:]
	switch len(digits) {
	case 3:
		// #abc == #aabbcc
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	case 6:
	default:
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// IsSettableColor reports whether hex may be saved as a preference. Only the
// full #RRGGBB form is accepted on save; #RGB is preview-only.
func IsSettableColor(hex string) bool {
	if len(hex) != 7 {
		return false
	}
	_, err := ParseColor(hex)
	return err == nil
}

// ContrastText picks black or white text for a swatch of colour c.
func ContrastText(c color.RGBA) color.RGBA {
	brightness := (int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000
	if brightness > 128 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}
