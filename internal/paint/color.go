package paint

import (
	"fmt"
	"image/color"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses "#RRGGBB" or "#RRGGBBAA". Colors without an alpha pair are
// fully opaque.
func ParseColor(s string) (color.NRGBA, error) {
	if len(s) != 7 && len(s) != 9 {
		return color.NRGBA{}, fmt.Errorf("color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	if _, err := strconv.ParseUint(s[1:], 16, 32); s[0] != '#' || err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: not a hex color", s)
	}
	c, err := colorful.Hex(s[:7])
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	out := color.NRGBA{R: r, G: g, B: b, A: 255}
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("color %q alpha: %w", s, err)
		}
		out.A = uint8(a)
	}
	return out, nil
}

// shadeColor darkens base toward black by amount in [0,1], keeping alpha.
func shadeColor(base color.NRGBA, amount float64) color.NRGBA {
	if amount <= 0 {
		return base
	}
	c, _ := colorful.MakeColor(color.NRGBA{R: base.R, G: base.G, B: base.B, A: 255})
	r, g, b := c.BlendRgb(colorful.Color{}, amount).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: base.A}
}
