// Package frame moves nodes in and out of containers when a drag ends and
// highlights the candidate container while the drag is in progress.
package frame

import (
	"fmt"

	"vectorboard/internal/scene"
)

// Action is the outcome of Reparent.
type Action int

const (
	// Unchanged means the node stays with its current parent.
	Unchanged Action = iota
	// MovedInto means the node was placed inside a container.
	MovedInto
	// MovedOut means the node left its container for the top level.
	MovedOut
)

func (a Action) String() string {
	switch a {
	case MovedInto:
		return "move-into-frame"
	case MovedOut:
		return "move-out-of-frame"
	default:
		return "unchanged"
	}
}

// Result describes what Reparent did.
type Result struct {
	Action Action
	// Target is the new parent for MovedInto.
	Target *scene.Node
}

// FindContainer returns the deepest container under p (tree space) that may
// receive dragged. Containers that are hidden, internal, zero-area, the
// dragged node itself or any of its descendants are ignored. Among
// overlapping siblings the smallest wins; equal areas go to the topmost.
func FindContainer(tree *scene.Tree, dragged *scene.Node, p scene.Point) *scene.Node {
	return search(tree.Root(), p, dragged)
}

// search looks at the children of parent; p is in parent's space.
func search(parent *scene.Node, p scene.Point, dragged *scene.Node) *scene.Node {
	var (
		best     *scene.Node
		bestArea float64
	)
	children := parent.Children()
	for i := len(children) - 1; i >= 0; i-- {
		c := children[i]
		if !eligible(c, dragged) {
			continue
		}
		b := c.LocalBounds()
		if b.Empty() || !b.Contains(p) {
			continue
		}
		if best == nil || b.Area() < bestArea {
			best, bestArea = c, b.Area()
		}
	}
	if best == nil {
		return nil
	}
	if deeper := search(best, best.Local().Invert().Apply(p), dragged); deeper != nil {
		return deeper
	}
	return best
}

func eligible(c, dragged *scene.Node) bool {
	if !c.Tag.IsContainer() || c.Internal || !c.Visible {
		return false
	}
	if dragged != nil && (c == dragged || dragged.IsAncestorOf(c)) {
		return false
	}
	return true
}

// Reparent places n in the container under its world-space center, or at the
// top level when no container is there. The node keeps its visual position.
func Reparent(tree *scene.Tree, n *scene.Node) (Result, error) {
	if n.Tree() != tree {
		return Result{}, fmt.Errorf("reparent %s: node is not in this tree", n.ID)
	}
	target := FindContainer(tree, n, n.WorldCenter())
	current := n.Parent()

	switch {
	case target != nil && target != current:
		if err := moveTo(n, target); err != nil {
			return Result{}, err
		}
		return Result{Action: MovedInto, Target: target}, nil
	case target == nil && current != nil && !current.IsRoot():
		if err := moveTo(n, tree.Root()); err != nil {
			return Result{}, err
		}
		return Result{Action: MovedOut}, nil
	default:
		return Result{Action: Unchanged}, nil
	}
}

// moveTo re-attaches n on top of parent, converting its position and
// rotation so nothing moves on screen.
func moveTo(n, parent *scene.Node) error {
	origin := n.WorldOrigin()
	rotation := n.WorldRotation()

	n.Detach()
	local := origin
	parentRotation := 0.0
	if !parent.IsRoot() {
		local = parent.ToLocal(origin)
		parentRotation = parent.WorldRotation()
	}
	n.X, n.Y = local.X, local.Y
	n.Rotation = rotation - parentRotation

	if err := parent.Add(n); err != nil {
		return fmt.Errorf("reparent %s: %w", n.ID, err)
	}
	return nil
}
