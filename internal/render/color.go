package render

import (
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

var namedColors = map[string]string{
	"black":       "#000000",
	"white":       "#ffffff",
	"red":         "#ff0000",
	"green":       "#008000",
	"blue":        "#0000ff",
	"yellow":      "#ffff00",
	"gray":        "#808080",
	"grey":        "#808080",
	"transparent": "#00000000",
}

// parseColor understands #hex, rgb(), rgba() and a few named colors.
// Unparseable input yields opaque black. alpha multiplies the result.
func parseColor(s string, alpha float64) gg.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}

	var c gg.RGBA
	switch {
	case strings.HasPrefix(s, "#"):
		c = gg.Hex(s)
	case strings.HasPrefix(s, "rgb"):
		c = parseFunctional(s)
	default:
		c = gg.RGB(0, 0, 0)
	}
	c.A *= alpha
	return c
}

func parseFunctional(s string) gg.RGBA {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end <= open {
		return gg.RGB(0, 0, 0)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) < 3 {
		return gg.RGB(0, 0, 0)
	}
	ch := func(i int) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return 0
		}
		return min(max(v/255, 0), 1)
	}
	a := 1.0
	if len(parts) >= 4 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64); err == nil {
			a = min(max(v, 0), 1)
		}
	}
	return gg.RGBA2(ch(0), ch(1), ch(2), a)
}
