package figma

import (
	"fmt"
	"math"

	"vectorboard/internal/scene"
)

var blendModes = map[string]string{
	"NORMAL":      "normal",
	"DARKEN":      "darken",
	"MULTIPLY":    "multiply",
	"COLOR_BURN":  "color-burn",
	"LIGHTEN":     "lighten",
	"SCREEN":      "screen",
	"COLOR_DODGE": "color-dodge",
	"OVERLAY":     "overlay",
	"SOFT_LIGHT":  "soft-light",
	"HARD_LIGHT":  "hard-light",
	"DIFFERENCE":  "difference",
	"EXCLUSION":   "exclusion",
	"HUE":         "hue",
	"SATURATION":  "saturation",
	"COLOR":       "color",
	"LUMINOSITY":  "luminosity",
}

// cssColor renders c as #rrggbb when fully opaque, rgba(...) otherwise.
func cssColor(c *Color, opacity float64) string {
	if c == nil {
		return ""
	}
	r := int(math.Round(c.R * 255))
	g := int(math.Round(c.G * 255))
	b := int(math.Round(c.B * 255))
	a := 1.0
	if c.A != nil {
		a = *c.A
	}
	a *= opacity
	if a == 1 {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", r, g, b, a)
}

func paintOpacity(p Paint) float64 {
	if p.Opacity != nil {
		return *p.Opacity
	}
	return 1
}

func firstVisible(paints []Paint) (Paint, bool) {
	for _, p := range paints {
		if visible(p.Visible) {
			return p, true
		}
	}
	return Paint{}, false
}

// resolveFill maps the first visible paint to a fill. Only solid colors and
// linear gradients are supported; anything else yields nil.
func resolveFill(fills []Paint) *scene.Fill {
	p, ok := firstVisible(fills)
	if !ok {
		return nil
	}
	switch p.Type {
	case "SOLID":
		if p.Color == nil {
			return nil
		}
		return scene.Solid(cssColor(p.Color, paintOpacity(p)))
	case "GRADIENT_LINEAR":
		if len(p.GradientStops) == 0 {
			return nil
		}
		stops := make([]scene.GradientStop, 0, len(p.GradientStops))
		for _, s := range p.GradientStops {
			stops = append(stops, scene.GradientStop{Offset: s.Position, Color: cssColor(s.Color, 1)})
		}
		return &scene.Fill{Stops: stops}
	default:
		return nil
	}
}

// resolveStroke returns the first visible solid stroke and the weight.
func resolveStroke(strokes []Paint, weight float64) (color string, width float64) {
	if len(strokes) == 0 {
		return "", 0
	}
	p, ok := firstVisible(strokes)
	if !ok {
		return "", 0
	}
	if p.Type == "SOLID" {
		color = cssColor(p.Color, paintOpacity(p))
	}
	return color, weight
}

func resolveShadow(effects []Effect) *scene.Shadow {
	for _, e := range effects {
		if (e.Type != "DROP_SHADOW" && e.Type != "INNER_SHADOW") || !visible(e.Visible) {
			continue
		}
		s := &scene.Shadow{Blur: e.Radius, Spread: e.Spread, Color: cssColor(e.Color, 1)}
		if e.Offset != nil {
			s.X, s.Y = e.Offset.X, e.Offset.Y
		}
		return s
	}
	return nil
}

func resolveCornerRadius(n *Node) *scene.CornerRadius {
	if len(n.RectangleCornerRadii) == 4 {
		r := n.RectangleCornerRadii
		return scene.Radii(r[0], r[1], r[2], r[3])
	}
	if n.CornerRadius == 0 {
		return nil
	}
	return scene.UniformRadius(n.CornerRadius)
}

func resolveBlendMode(mode string) string {
	if mode == "" || mode == "PASS_THROUGH" {
		return ""
	}
	return blendModes[mode]
}

func resolveTextStyle(s *TypeStyle) scene.TextStyle {
	var out scene.TextStyle
	if s == nil {
		return out
	}
	out.FontSize = s.FontSize
	out.FontFamily = s.FontFamily
	if s.FontWeight != 0 {
		out.FontWeight = "normal"
		if s.FontWeight >= 700 {
			out.FontWeight = "bold"
		}
	}
	out.LetterSpacing = s.LetterSpacing
	if s.LineHeightPx != 0 {
		size := s.FontSize
		if size == 0 {
			size = 14
		}
		out.LineHeight = &scene.LineHeight{Type: "percent", Value: s.LineHeightPx / size}
	}
	if s.TextAlignHorizontal != "" {
		out.TextAlign = map[string]string{"LEFT": "left", "CENTER": "center", "RIGHT": "right", "JUSTIFIED": "justify"}[s.TextAlignHorizontal]
		if out.TextAlign == "" {
			out.TextAlign = "left"
		}
	}
	if s.TextAlignVertical != "" {
		out.VerticalAlign = map[string]string{"TOP": "top", "CENTER": "middle", "BOTTOM": "bottom"}[s.TextAlignVertical]
		if out.VerticalAlign == "" {
			out.VerticalAlign = "top"
		}
	}
	return out
}
