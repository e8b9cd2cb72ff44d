// Package utils provides small helpers shared by the globe renderer and the site builder.
package utils

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

var ErrInvalidColor = errors.New("invalid color")

// ParseColor parses a CSS colour (hex, rgb(), rgba(), hsl(), named) and the
// 0xrrggbb form used for light colours. The result is non-premultiplied.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "0x") {
		s = "#" + s[2:]
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	var ch [4]uint8
	for i, v := range [4]float64{c.R, c.G, c.B, c.A} {
		// the parser passes NaN and out-of-range channels through
		if math.IsNaN(v) || v < -1e-9 || v > 1+1e-9 {
			return color.NRGBA{}, fmt.Errorf("%w: %q: channel out of range", ErrInvalidColor, s)
		}
		ch[i] = uint8(math.Round(Clamp01(v) * 255))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// MustParseColor is ParseColor for compile-time constants.
func MustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// HexColor converts a 0xRRGGBB integer, as used for light colours, to an opaque colour.
func HexColor(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// EaseOutCubic maps linear progress onto a decelerating curve.
func EaseOutCubic(t float64) float64 {
	t = Clamp01(t)
	u := 1 - t
	return 1 - u*u*u
}
