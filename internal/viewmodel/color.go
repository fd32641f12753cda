package viewmodel

import (
	"fmt"
	"math"
)

const (
	hueStep    = 36
	saturation = 70
	lightness  = 50
)

// Color is a series color in CSS and hex form.
type Color struct {
	Hue int    `json:"hue"`
	CSS string `json:"css"` // hsl(h, 70%, 50%)
	Hex string `json:"hex"` // #rrggbb
}

// ColorAt returns the color for the series at index i. Hues are evenly spaced
// and repeat after ten series.
func ColorAt(i int) Color {
	hue := (i * hueStep) % 360
	if hue < 0 {
		hue += 360
	}
	return Color{
		Hue: hue,
		CSS: fmt.Sprintf("hsl(%d, %d%%, %d%%)", hue, saturation, lightness),
		Hex: hslToHex(float64(hue), saturation/100.0, lightness/100.0),
	}
}

func hslToHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	to8 := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", to8(r), to8(g), to8(b))
}
