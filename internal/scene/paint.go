package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GradientStop is one color stop of a linear gradient.
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Fill is either a solid CSS color or a linear gradient.
// A solid fill marshals to a plain JSON string.
type Fill struct {
	Color string
	Stops []GradientStop
}

// Solid returns a solid color fill.
func Solid(color string) *Fill {
	return &Fill{Color: color}
}

// IsGradient reports whether the fill carries gradient stops.
func (f *Fill) IsGradient() bool {
	return f != nil && len(f.Stops) > 0
}

type gradientJSON struct {
	Type  string         `json:"type"`
	Stops []GradientStop `json:"stops"`
}

func (f Fill) MarshalJSON() ([]byte, error) {
	if len(f.Stops) > 0 {
		return json.Marshal(gradientJSON{Type: "linear", Stops: f.Stops})
	}
	return json.Marshal(f.Color)
}

func (f *Fill) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		f.Stops = nil
		return json.Unmarshal(data, &f.Color)
	}
	var g gradientJSON
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("decode fill: %w", err)
	}
	if g.Type != "" && g.Type != "linear" {
		return fmt.Errorf("decode fill: unsupported gradient %q", g.Type)
	}
	f.Color = ""
	f.Stops = g.Stops
	return nil
}

// CornerRadius is a uniform radius or four independent radii
// ordered top-left, top-right, bottom-right, bottom-left.
type CornerRadius struct {
	Uniform float64
	Corners []float64
}

// UniformRadius returns a CornerRadius with one value for all corners.
func UniformRadius(r float64) *CornerRadius {
	return &CornerRadius{Uniform: r}
}

// Radii returns a CornerRadius from four values, collapsing to a uniform
// radius when all four are equal.
func Radii(tl, tr, br, bl float64) *CornerRadius {
	if tl == tr && tr == br && br == bl {
		return &CornerRadius{Uniform: tl}
	}
	return &CornerRadius{Corners: []float64{tl, tr, br, bl}}
}

// Max returns the largest radius.
func (c *CornerRadius) Max() float64 {
	if c == nil {
		return 0
	}
	if len(c.Corners) == 0 {
		return c.Uniform
	}
	m := c.Corners[0]
	for _, v := range c.Corners[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func (c CornerRadius) MarshalJSON() ([]byte, error) {
	if len(c.Corners) == 4 {
		return json.Marshal(c.Corners)
	}
	return json.Marshal(c.Uniform)
}

func (c *CornerRadius) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var vals []float64
		if err := json.Unmarshal(data, &vals); err != nil {
			return fmt.Errorf("decode corner radius: %w", err)
		}
		if len(vals) != 4 {
			return fmt.Errorf("decode corner radius: want 4 values, got %d", len(vals))
		}
		*c = *Radii(vals[0], vals[1], vals[2], vals[3])
		return nil
	}
	c.Corners = nil
	return json.Unmarshal(data, &c.Uniform)
}

// Shadow is a drop or inner shadow.
type Shadow struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Blur   float64 `json:"blur"`
	Spread float64 `json:"spread"`
	Color  string  `json:"color,omitempty"`
}

// LineHeight is either a pixel value or a multiplier ("percent").
type LineHeight struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

func (l *LineHeight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain LineHeight
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode line height: %w", err)
		}
		*l = LineHeight(p)
		return nil
	}
	l.Type = "px"
	return json.Unmarshal(data, &l.Value)
}

// TextStyle holds the typographic attributes of a Text node.
type TextStyle struct {
	FontSize      float64     `json:"fontSize,omitempty"`
	FontFamily    string      `json:"fontFamily,omitempty"`
	FontWeight    string      `json:"fontWeight,omitempty"`
	LetterSpacing float64     `json:"letterSpacing,omitempty"`
	LineHeight    *LineHeight `json:"lineHeight,omitempty"`
	TextAlign     string      `json:"textAlign,omitempty"`
	VerticalAlign string      `json:"verticalAlign,omitempty"`
}
