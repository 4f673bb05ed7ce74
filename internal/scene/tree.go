package scene

import "slices"

// ChangeKind classifies a tree notification.
type ChangeKind int

const (
	ChildAdded ChangeKind = iota
	ChildRemoved
	PropertyChanged
)

// Change describes one mutation of the tree.
type Change struct {
	Kind ChangeKind
	Node *Node
	// Parent is set for ChildRemoved since Node is already detached.
	Parent *Node
	// Attr names the property for PropertyChanged.
	Attr string
}

// Viewport is the visible window onto the tree. Zoom scales tree units to
// screen pixels; Pan is the screen offset of the tree origin.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Zoom   float64 `json:"zoom"`
	PanX   float64 `json:"panX"`
	PanY   float64 `json:"panY"`
}

// DefaultViewport is used when no canvas size has been reported yet.
var DefaultViewport = Viewport{Width: 800, Height: 600, Zoom: 1}

// Tree is the root container of a document plus its viewport.
type Tree struct {
	root      *Node
	viewport  Viewport
	listeners []func(Change)
}

// NewTree returns an empty tree with the default viewport.
func NewTree() *Tree {
	t := &Tree{viewport: DefaultViewport}
	t.root = &Node{ID: "root", Tag: TagGroup, Opacity: 1, Visible: true, Hittable: true, HitChildren: true}
	t.root.tree = t
	return t
}

// Root returns the root container.
func (t *Tree) Root() *Node { return t.root }

// Children returns the top-level nodes, bottom-most first.
func (t *Tree) Children() []*Node { return t.root.children }

// Add appends n at the top level.
func (t *Tree) Add(n *Node) error { return t.root.Add(n) }

// Insert places n at index among the top-level nodes.
func (t *Tree) Insert(n *Node, index int) error { return t.root.Insert(n, index) }

// Clear removes every top-level node.
func (t *Tree) Clear() {
	for _, c := range slices.Clone(t.root.children) {
		t.root.Remove(c)
	}
}

// OnChange registers a listener for add, remove and property notifications.
func (t *Tree) OnChange(fn func(Change)) {
	t.listeners = append(t.listeners, fn)
}

func (t *Tree) emit(c Change) {
	for _, fn := range t.listeners {
		fn(c)
	}
}

// Find returns the node with the given id anywhere in the tree.
func (t *Tree) Find(id string) *Node {
	var found *Node
	t.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id && n != t.root {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits every node below the root.
func (t *Tree) Walk(fn func(*Node) bool) {
	for _, c := range slices.Clone(t.root.children) {
		c.Walk(fn)
	}
}

// Viewport returns the current viewport.
func (t *Tree) Viewport() Viewport { return t.viewport }

// SetViewport replaces the viewport. A non-positive zoom is reset to 1.
func (t *Tree) SetViewport(v Viewport) {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	t.viewport = v
}

// Zoom returns the current scale factor.
func (t *Tree) Zoom() float64 {
	if t.viewport.Zoom <= 0 {
		return 1
	}
	return t.viewport.Zoom
}

// InnerPoint converts a screen position into tree space.
func (t *Tree) InnerPoint(screen Point) Point {
	z := t.Zoom()
	return Point{X: (screen.X - t.viewport.PanX) / z, Y: (screen.Y - t.viewport.PanY) / z}
}

// VisibleBounds returns the part of tree space currently on screen.
func (t *Tree) VisibleBounds() Bounds {
	z := t.Zoom()
	return Bounds{
		X:      -t.viewport.PanX / z,
		Y:      -t.viewport.PanY / z,
		Width:  t.viewport.Width / z,
		Height: t.viewport.Height / z,
	}
}

// VisibleCenter returns the tree-space point at the middle of the screen.
func (t *Tree) VisibleCenter() Point {
	return t.VisibleBounds().Center()
}

// HitTest returns the topmost visible, hittable node under p (tree space).
// Frames and boxes are searched for a child first; groups are hit as a whole.
func (t *Tree) HitTest(p Point) *Node {
	return hitIn(t.root, p)
}

func hitIn(parent *Node, p Point) *Node {
	if !parent.HitChildren {
		return nil
	}
	for i := len(parent.children) - 1; i >= 0; i-- {
		c := parent.children[i]
		if !c.Visible || c.Internal {
			continue
		}
		if c.Tag == TagFrame || c.Tag == TagBox {
			if hit := hitIn(c, p); hit != nil {
				return hit
			}
		}
		if c.Hittable && c.WorldBounds().Contains(p) {
			return c
		}
	}
	return nil
}
