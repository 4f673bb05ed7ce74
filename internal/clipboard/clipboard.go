// Package clipboard holds copied subtrees and rebuilds them as fresh nodes.
package clipboard

import (
	"vectorboard/internal/scene"
)

// DefaultStep is the offset added per consecutive paste, in tree units.
const DefaultStep = 20

// Clipboard stores serialized copies of nodes. Internal nodes are never
// copied. Each paste is shifted one more step than the previous one until
// ResetOffset is called.
type Clipboard struct {
	step    float64
	records []scene.Record
	pastes  int
	logf    func(format string, args ...any)
}

// New returns an empty clipboard. A non-positive step selects DefaultStep.
func New(step float64, logf func(format string, args ...any)) *Clipboard {
	if step <= 0 {
		step = DefaultStep
	}
	return &Clipboard{step: step, logf: logf}
}

// Copy replaces the clipboard content with nodes and resets the offset.
// Top-level copies keep their on-screen position even when nested.
func (c *Clipboard) Copy(nodes []*scene.Node) int {
	var records []scene.Record
	for _, n := range nodes {
		if n.Internal {
			continue
		}
		records = append(records, scene.ToRecord(n, scene.SerializeOptions{ExcludeInternal: true, WorldPosition: true}))
	}
	c.records = records
	c.pastes = 0
	return len(records)
}

// Empty reports whether there is nothing to paste.
func (c *Clipboard) Empty() bool { return len(c.records) == 0 }

// Len returns the number of copied top-level records.
func (c *Clipboard) Len() int { return len(c.records) }

// Records returns the copied records.
func (c *Clipboard) Records() []scene.Record { return c.records }

// Paste builds detached copies with fresh identities, shifted by the
// cascading offset. Records that cannot be built are skipped.
func (c *Clipboard) Paste() []*scene.Node {
	if c.Empty() {
		return nil
	}
	c.pastes++
	return build(c.records, c.step*float64(c.pastes), c.logf)
}

// ResetOffset restarts the cascade so the next paste is one step away.
func (c *Clipboard) ResetOffset() { c.pastes = 0 }

// Duplicate returns a shifted copy of n without touching any clipboard.
func Duplicate(n *scene.Node, step float64, logf func(format string, args ...any)) *scene.Node {
	if n.Internal {
		return nil
	}
	if step <= 0 {
		step = DefaultStep
	}
	rec := scene.ToRecord(n, scene.SerializeOptions{ExcludeInternal: true, WorldPosition: true})
	nodes := build([]scene.Record{rec}, step, logf)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func build(records []scene.Record, offset float64, logf func(format string, args ...any)) []*scene.Node {
	shifted := make([]scene.Record, len(records))
	for i, r := range records {
		r.X += offset
		r.Y += offset
		shifted[i] = r
	}
	return scene.FromRecords(shifted, scene.BuildOptions{FreshIDs: true, FrameLabels: true, Logf: logf})
}
