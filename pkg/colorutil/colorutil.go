// Package colorutil provides color helpers shared by map rendering and the UI.
package colorutil

import (
	"fmt"
	"image/color"
)

// Common colors.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Gold  = color.RGBA{R: 255, G: 215, B: 0, A: 255}
)

// Hex formats a color as #rrggbb. Alpha is dropped.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb or the short #rgb form into an opaque color.
func ParseHex(s string) (color.RGBA, bool) {
	var r, g, b uint8
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, false
		}
	case 4:
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b); err != nil {
			return color.RGBA{}, false
		}
		r, g, b = r*17, g*17, b*17
	default:
		return color.RGBA{}, false
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}

// WithOpacity scales a premultiplied color by opacity. Values outside (0, 1)
// leave c unchanged.
func WithOpacity(c color.RGBA, opacity float64) color.RGBA {
	if opacity <= 0 || opacity >= 1 {
		return c
	}
	return color.RGBA{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(float64(c.A) * opacity),
	}
}

// WithAlpha returns c as non-premultiplied NRGBA with the given alpha.
func WithAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
