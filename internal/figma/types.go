package figma

// FileResponse is the payload of GET /v1/files/:key.
type FileResponse struct {
	Name          string `json:"name"`
	LastModified  string `json:"lastModified"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	Version       string `json:"version"`
	Document      *Node  `json:"document"`
	SchemaVersion int    `json:"schemaVersion"`
}

// Node is one element of the REST document tree. Types are upper-case
// (FRAME, RECTANGLE, TEXT, ...) and geometry is absolute.
type Node struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Type                 string     `json:"type"`
	Visible              *bool      `json:"visible,omitempty"`
	Children             []Node     `json:"children,omitempty"`
	AbsoluteBoundingBox  *Rectangle `json:"absoluteBoundingBox,omitempty"`
	Size                 *Vector    `json:"size,omitempty"`
	Rotation             float64    `json:"rotation,omitempty"`
	Opacity              *float64   `json:"opacity,omitempty"`
	BlendMode            string     `json:"blendMode,omitempty"`
	ClipsContent         bool       `json:"clipsContent,omitempty"`
	Fills                []Paint    `json:"fills,omitempty"`
	Strokes              []Paint    `json:"strokes,omitempty"`
	StrokeWeight         float64    `json:"strokeWeight,omitempty"`
	CornerRadius         float64    `json:"cornerRadius,omitempty"`
	RectangleCornerRadii []float64  `json:"rectangleCornerRadii,omitempty"`
	Effects              []Effect   `json:"effects,omitempty"`
	Characters           string     `json:"characters,omitempty"`
	Style                *TypeStyle `json:"style,omitempty"`
}

// Color is an RGBA color with channels in [0, 1]. A missing alpha is opaque.
type Color struct {
	R float64  `json:"r"`
	G float64  `json:"g"`
	B float64  `json:"b"`
	A *float64 `json:"a,omitempty"`
}

// Paint is a fill or stroke.
type Paint struct {
	Type          string      `json:"type"`
	Visible       *bool       `json:"visible,omitempty"`
	Opacity       *float64    `json:"opacity,omitempty"`
	Color         *Color      `json:"color,omitempty"`
	GradientStops []ColorStop `json:"gradientStops,omitempty"`
	ImageRef      string      `json:"imageRef,omitempty"`
}

// ColorStop is a gradient stop.
type ColorStop struct {
	Position float64 `json:"position"`
	Color    *Color  `json:"color"`
}

// Effect is a shadow or blur.
type Effect struct {
	Type    string  `json:"type"`
	Visible *bool   `json:"visible,omitempty"`
	Radius  float64 `json:"radius,omitempty"`
	Color   *Color  `json:"color,omitempty"`
	Offset  *Vector `json:"offset,omitempty"`
	Spread  float64 `json:"spread,omitempty"`
}

// Vector is a 2D offset or size.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TypeStyle holds text styling.
type TypeStyle struct {
	FontFamily          string  `json:"fontFamily"`
	FontWeight          float64 `json:"fontWeight"`
	FontSize            float64 `json:"fontSize"`
	LineHeightPx        float64 `json:"lineHeightPx"`
	LetterSpacing       float64 `json:"letterSpacing"`
	TextAlignHorizontal string  `json:"textAlignHorizontal"`
	TextAlignVertical   string  `json:"textAlignVertical"`
}

// Rectangle is an absolute bounding box.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func visible(v *bool) bool { return v == nil || *v }
