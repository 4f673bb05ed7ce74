package scene

import (
	"fmt"
	"log"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Record is the plain, persisted form of a node and its subtree.
// Boolean flags are pointers so an absent field keeps the node default.
type Record struct {
	Tag  Tag    `json:"tag"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Rotation float64   `json:"rotation,omitempty"`
	Points   []float64 `json:"points,omitempty"`

	Fill         *Fill         `json:"fill,omitempty"`
	Stroke       string        `json:"stroke,omitempty"`
	StrokeWidth  float64       `json:"strokeWidth,omitempty"`
	CornerRadius *CornerRadius `json:"cornerRadius,omitempty"`
	Opacity      *float64      `json:"opacity,omitempty"`
	Shadow       *Shadow       `json:"shadow,omitempty"`
	BlendMode    string        `json:"blendMode,omitempty"`

	Editable  *bool `json:"editable,omitempty"`
	Draggable *bool `json:"draggable,omitempty"`
	Visible   *bool `json:"visible,omitempty"`
	Locked    *bool `json:"locked,omitempty"`
	Hittable  *bool `json:"hittable,omitempty"`

	Text string `json:"text,omitempty"`
	TextStyle
	URL      string            `json:"url,omitempty"`
	Overflow string            `json:"overflow,omitempty"`
	Data     map[string]string `json:"data,omitempty"`

	Children []Record `json:"children,omitempty"`
}

// Bool returns a pointer to v, for filling Record flags.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// SerializeOptions controls ToRecord.
type SerializeOptions struct {
	// ExcludeInternal drops internal nodes such as frame labels.
	ExcludeInternal bool
	// WorldPosition stores the top-level record at its tree-space origin
	// and rotation instead of its parent-relative ones.
	WorldPosition bool
}

// ToRecord serializes n and its subtree.
func ToRecord(n *Node, opts SerializeOptions) Record {
	r := Record{
		Tag:          n.Tag,
		ID:           n.ID,
		Name:         n.Name,
		X:            n.X,
		Y:            n.Y,
		Width:        n.Width,
		Height:       n.Height,
		Rotation:     n.Rotation,
		Points:       slices.Clone(n.Points),
		Fill:         cloneFill(n.Fill),
		Stroke:       n.Stroke,
		StrokeWidth:  n.StrokeWidth,
		CornerRadius: cloneRadius(n.CornerRadius),
		Shadow:       cloneShadow(n.Shadow),
		BlendMode:    n.BlendMode,
		Text:         n.Text,
		TextStyle:    cloneStyle(n.TextStyle),
		URL:          n.URL,
		Overflow:     n.Overflow,
		Data:         maps.Clone(n.Data),
	}
	if n.Opacity != 1 {
		r.Opacity = Float(n.Opacity)
	}
	if !n.Editable {
		r.Editable = Bool(false)
	}
	if !n.Draggable {
		r.Draggable = Bool(false)
	}
	if !n.Visible {
		r.Visible = Bool(false)
	}
	if n.Locked {
		r.Locked = Bool(true)
	}
	if !n.Hittable {
		r.Hittable = Bool(false)
	}
	if opts.WorldPosition && n.parent != nil && !n.parent.IsRoot() {
		o := n.WorldOrigin()
		r.X, r.Y = o.X, o.Y
		r.Rotation = n.WorldRotation()
	}
	child := opts
	child.WorldPosition = false
	for _, c := range n.children {
		if opts.ExcludeInternal && c.Internal {
			continue
		}
		r.Children = append(r.Children, ToRecord(c, child))
	}
	return r
}

// ToRecords serializes the given nodes in order.
func ToRecords(nodes []*Node, opts SerializeOptions) []Record {
	out := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ToRecord(n, opts))
	}
	return out
}

// BuildOptions controls FromRecord.
type BuildOptions struct {
	// FreshIDs assigns new identities to every built node.
	FreshIDs bool
	// FrameLabels attaches a new title label to every frame. Label
	// records already present in the input are dropped.
	FrameLabels bool
	// Logf receives diagnostics for skipped records. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (o BuildOptions) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// FromRecord builds a detached node tree from r. An unknown tag on r itself
// is an error; unknown tags further down are skipped with a diagnostic.
func FromRecord(r Record, opts BuildOptions) (*Node, error) {
	if !r.Tag.Valid() {
		return nil, fmt.Errorf("build %q: %w", r.Tag, ErrUnknownTag)
	}
	n := New(r.Tag)
	if r.ID != "" && !opts.FreshIDs {
		n.ID = r.ID
	}
	n.Name = r.Name
	n.X, n.Y, n.Width, n.Height, n.Rotation = r.X, r.Y, r.Width, r.Height, r.Rotation
	n.Points = slices.Clone(r.Points)
	n.Fill = cloneFill(r.Fill)
	n.Stroke, n.StrokeWidth = r.Stroke, r.StrokeWidth
	n.CornerRadius = cloneRadius(r.CornerRadius)
	if r.Opacity != nil {
		n.Opacity = *r.Opacity
	}
	n.Shadow = cloneShadow(r.Shadow)
	n.BlendMode = r.BlendMode
	if r.Editable != nil {
		n.Editable = *r.Editable
	}
	if r.Draggable != nil {
		n.Draggable = *r.Draggable
	}
	if r.Visible != nil {
		n.Visible = *r.Visible
	}
	if r.Locked != nil {
		n.Locked = *r.Locked
	}
	if r.Hittable != nil {
		n.Hittable = *r.Hittable
	}
	n.Text = r.Text
	n.TextStyle = cloneStyle(r.TextStyle)
	n.URL, n.Overflow = r.URL, r.Overflow
	n.Data = maps.Clone(r.Data)

	if !n.Tag.IsContainer() {
		if len(r.Children) > 0 {
			opts.logf("scene: dropping %d children of non-container %s", len(r.Children), n.Tag)
		}
		return n, nil
	}
	for _, cr := range r.Children {
		if opts.FrameLabels && cr.Data[DataFrameLabel] == "true" {
			continue
		}
		c, err := FromRecord(cr, opts)
		if err != nil {
			opts.logf("scene: skipping child of %s: %v", n.Tag, err)
			continue
		}
		n.children = append(n.children, c)
		c.parent = n
	}
	if opts.FrameLabels && n.Tag == TagFrame {
		AttachFrameLabel(n)
	}
	return n, nil
}

// FromRecords builds every record, skipping those that fail.
func FromRecords(records []Record, opts BuildOptions) []*Node {
	out := make([]*Node, 0, len(records))
	for _, r := range records {
		n, err := FromRecord(r, opts)
		if err != nil {
			opts.logf("scene: skipping record: %v", err)
			continue
		}
		out = append(out, n)
	}
	return out
}

// AttachFrameLabel adds a title label to a frame, naming the frame first
// when it has no name yet.
func AttachFrameLabel(frame *Node) {
	if frame.FrameLabel() != nil {
		return
	}
	if frame.Name == "" {
		frame.Name = "Frame"
	}
	label := NewFrameLabel(frame.Name)
	frame.children = append(frame.children, label)
	label.parent = frame
	label.setTree(frame.tree)
}

// MarkInternal re-derives the internal flag for frame labels below n.
func MarkInternal(n *Node) {
	for _, c := range n.children {
		if IsFrameLabel(n, c) {
			c.Internal = true
		}
		MarkInternal(c)
	}
}

// NewID returns a fresh node identity.
func NewID() string { return uuid.NewString() }

func cloneFill(f *Fill) *Fill {
	if f == nil {
		return nil
	}
	return &Fill{Color: f.Color, Stops: slices.Clone(f.Stops)}
}

func cloneRadius(c *CornerRadius) *CornerRadius {
	if c == nil {
		return nil
	}
	return &CornerRadius{Uniform: c.Uniform, Corners: slices.Clone(c.Corners)}
}

func cloneShadow(s *Shadow) *Shadow {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func cloneStyle(s TextStyle) TextStyle {
	if s.LineHeight != nil {
		lh := *s.LineHeight
		s.LineHeight = &lh
	}
	return s
}
