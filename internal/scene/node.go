package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Tag identifies the kind of a node.
type Tag string

const (
	TagRect    Tag = "Rect"
	TagEllipse Tag = "Ellipse"
	TagPolygon Tag = "Polygon"
	TagStar    Tag = "Star"
	TagText    Tag = "Text"
	TagLine    Tag = "Line"
	TagArrow   Tag = "Arrow"
	TagImage   Tag = "Image"
	TagGroup   Tag = "Group"
	TagBox     Tag = "Box"
	TagFrame   Tag = "Frame"
)

var knownTags = map[Tag]bool{
	TagRect: true, TagEllipse: true, TagPolygon: true, TagStar: true,
	TagText: true, TagLine: true, TagArrow: true, TagImage: true,
	TagGroup: true, TagBox: true, TagFrame: true,
}

// Valid reports whether t is a recognized tag.
func (t Tag) Valid() bool {
	return knownTags[t]
}

// IsContainer reports whether nodes with this tag may own children.
func (t Tag) IsContainer() bool {
	return t == TagFrame || t == TagBox || t == TagGroup
}

var (
	ErrUnknownTag   = errors.New("unknown node tag")
	ErrNotContainer = errors.New("node is not a container")
	ErrCycle        = errors.New("node cannot contain its own ancestor")
)

// Data key marking the non-interactive name label of a frame.
const DataFrameLabel = "frameLabel"

// Node is one element of the scene graph. Fields may be written directly
// while a node is detached; once attached, use the setters so the owning
// tree is notified.
type Node struct {
	ID   string
	Tag  Tag
	Name string

	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
	Points   []float64

	Fill         *Fill
	Stroke       string
	StrokeWidth  float64
	CornerRadius *CornerRadius
	Opacity      float64
	Shadow       *Shadow
	BlendMode    string

	Editable    bool
	Draggable   bool
	Visible     bool
	Locked      bool
	Hittable    bool
	HitChildren bool
	// Internal nodes are hidden from layers, clipboard and export.
	// Never persisted; re-derived after a restore.
	Internal bool

	Text string
	TextStyle
	URL      string
	Overflow string
	Data     map[string]string

	parent   *Node
	children []*Node
	tree     *Tree
}

// New returns a detached node with a fresh id and interactive defaults.
func New(tag Tag) *Node {
	return &Node{
		ID:          uuid.NewString(),
		Tag:         tag,
		Opacity:     1,
		Editable:    true,
		Draggable:   true,
		Visible:     true,
		Hittable:    true,
		HitChildren: true,
	}
}

// NewFrameLabel returns the internal title text shown above a frame.
func NewFrameLabel(name string) *Node {
	n := New(TagText)
	n.Text = name
	n.Y = -20
	n.FontSize = 12
	n.Fill = Solid("#999999")
	n.Editable = false
	n.Draggable = false
	n.Hittable = false
	n.Internal = true
	n.Data = map[string]string{DataFrameLabel: "true"}
	return n
}

// IsFrameLabel reports whether child is the title label of parent. Besides
// the data marker it recognizes the shape older documents were saved with.
func IsFrameLabel(parent, child *Node) bool {
	if child.Data[DataFrameLabel] == "true" {
		return true
	}
	return parent != nil && parent.Tag == TagFrame && child.Tag == TagText &&
		child.Y == -20 && !child.Editable && !child.Hittable
}

// Parent returns the owning container, or nil when detached.
// Top-level nodes return the tree root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the ordered children, bottom-most first.
func (n *Node) Children() []*Node { return n.children }

// IsRoot reports whether n is the root of its tree.
func (n *Node) IsRoot() bool { return n.tree != nil && n.tree.root == n }

// Tree returns the owning tree, or nil when detached.
func (n *Node) Tree() *Tree { return n.tree }

// FrameLabel returns the internal label child of a frame, if any.
func (n *Node) FrameLabel() *Node {
	for _, c := range n.children {
		if c.Internal && IsFrameLabel(n, c) {
			return c
		}
	}
	return nil
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Add appends child on top of n's children.
func (n *Node) Add(child *Node) error {
	return n.Insert(child, len(n.children))
}

// Insert places child at index among n's children, detaching it from any
// previous parent first. Index is clamped to the valid range.
func (n *Node) Insert(child *Node, index int) error {
	if !n.Tag.IsContainer() && !n.IsRoot() {
		return fmt.Errorf("add %s to %s: %w", child.Tag, n.Tag, ErrNotContainer)
	}
	if child == n || child.IsAncestorOf(n) {
		return ErrCycle
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	index = max(0, min(index, len(n.children)))
	n.children = slices.Insert(n.children, index, child)
	child.parent = n
	child.setTree(n.tree)
	n.notify(Change{Kind: ChildAdded, Node: child})
	return nil
}

// Remove detaches child from n. It is a no-op when child is not a direct child.
func (n *Node) Remove(child *Node) {
	i := slices.Index(n.children, child)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	tree := n.tree
	child.parent = nil
	child.setTree(nil)
	if tree != nil {
		tree.emit(Change{Kind: ChildRemoved, Node: child, Parent: n})
	}
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// IndexOf returns the position of child among n's children or -1.
func (n *Node) IndexOf(child *Node) int {
	return slices.Index(n.children, child)
}

func (n *Node) setTree(t *Tree) {
	n.tree = t
	for _, c := range n.children {
		c.setTree(t)
	}
}

func (n *Node) notify(c Change) {
	if n.tree != nil {
		n.tree.emit(c)
	}
}

// ── Setters ────────────────────────────────────────────────

// SetName renames the node. A frame keeps its label in sync.
func (n *Node) SetName(name string) {
	if n.Name == name {
		return
	}
	n.Name = name
	if n.Tag == TagFrame {
		if l := n.FrameLabel(); l != nil {
			l.Text = name
		}
	}
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "name"})
}

func (n *Node) SetVisible(v bool) {
	if n.Visible == v {
		return
	}
	n.Visible = v
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "visible"})
}

func (n *Node) SetLocked(v bool) {
	if n.Locked == v {
		return
	}
	n.Locked = v
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "locked"})
}

func (n *Node) SetText(s string) {
	if n.Text == s {
		return
	}
	n.Text = s
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "text"})
}

func (n *Node) SetPosition(x, y float64) {
	n.X, n.Y = x, y
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "position"})
}

func (n *Node) SetSize(w, h float64) {
	n.Width, n.Height = w, h
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "size"})
}

func (n *Node) SetPoints(pts []float64) {
	n.Points = pts
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "points"})
}

func (n *Node) SetStroke(color string, width float64) {
	n.Stroke, n.StrokeWidth = color, width
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "stroke"})
}

func (n *Node) SetFill(f *Fill) {
	n.Fill = f
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "fill"})
}

func (n *Node) SetRotation(deg float64) {
	n.Rotation = deg
	n.notify(Change{Kind: PropertyChanged, Node: n, Attr: "rotation"})
}

// ── Geometry ───────────────────────────────────────────────

// PointList returns Points as coordinate pairs.
func (n *Node) PointList() []Point {
	pts := make([]Point, 0, len(n.Points)/2)
	for i := 0; i+1 < len(n.Points); i += 2 {
		pts = append(pts, Point{X: n.Points[i], Y: n.Points[i+1]})
	}
	return pts
}

// Local returns the transform from n's own space into its parent's space.
func (n *Node) Local() Matrix {
	return Translate(n.X, n.Y).Mul(Rotate(n.Rotation))
}

// World returns the transform from n's own space into tree space.
func (n *Node) World() Matrix {
	m := n.Local()
	for p := n.parent; p != nil && !p.IsRoot(); p = p.parent {
		m = p.Local().Mul(m)
	}
	return m
}

// WorldRotation returns the accumulated rotation in degrees.
func (n *Node) WorldRotation() float64 {
	r := n.Rotation
	for p := n.parent; p != nil && !p.IsRoot(); p = p.parent {
		r += p.Rotation
	}
	return r
}

// box returns the node's extent in its own space.
func (n *Node) box() Bounds {
	if (n.Tag == TagLine || n.Tag == TagArrow || n.Tag == TagPolygon) && len(n.Points) >= 4 {
		return boundsOf(n.PointList())
	}
	return Bounds{Width: n.Width, Height: n.Height}
}

func transformedBounds(m Matrix, b Bounds) Bounds {
	return boundsOf([]Point{
		m.Apply(Point{X: b.X, Y: b.Y}),
		m.Apply(Point{X: b.X + b.Width, Y: b.Y}),
		m.Apply(Point{X: b.X + b.Width, Y: b.Y + b.Height}),
		m.Apply(Point{X: b.X, Y: b.Y + b.Height}),
	})
}

// LocalBounds returns the node's box in its parent's space.
func (n *Node) LocalBounds() Bounds {
	return transformedBounds(n.Local(), n.box())
}

// WorldBounds returns the node's box in tree space.
func (n *Node) WorldBounds() Bounds {
	return transformedBounds(n.World(), n.box())
}

// WorldCenter returns the center of the node's box in tree space.
func (n *Node) WorldCenter() Point {
	return n.World().Apply(n.box().Center())
}

// WorldOrigin returns the node's (x, y) anchor in tree space.
func (n *Node) WorldOrigin() Point {
	return n.World().Apply(Point{})
}

// ToLocal maps a tree-space point into n's own coordinate space.
func (n *Node) ToLocal(p Point) Point {
	return n.World().Invert().Apply(p)
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range slices.Clone(n.children) {
		c.Walk(fn)
	}
}
