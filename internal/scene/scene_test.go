package scene_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectorboard/internal/scene"
)

func rect(x, y, w, h float64) *scene.Node {
	n := scene.New(scene.TagRect)
	n.X, n.Y, n.Width, n.Height = x, y, w, h
	return n
}

func frame(x, y, w, h float64) *scene.Node {
	n := scene.New(scene.TagFrame)
	n.X, n.Y, n.Width, n.Height = x, y, w, h
	return n
}

func TestMatrix_InvertRoundTrip(t *testing.T) {
	m := scene.Translate(30, -12).Mul(scene.Rotate(37))
	p := scene.Point{X: 5, Y: 9}
	back := m.Invert().Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestNode_WorldGeometryNested(t *testing.T) {
	tree := scene.NewTree()
	f := frame(100, 100, 400, 300)
	r := rect(10, 20, 50, 40)
	require.NoError(t, tree.Add(f))
	require.NoError(t, f.Add(r))

	assert.Equal(t, scene.Point{X: 110, Y: 120}, r.WorldOrigin())
	assert.Equal(t, scene.Point{X: 135, Y: 140}, r.WorldCenter())
	assert.Equal(t, scene.Bounds{X: 110, Y: 120, Width: 50, Height: 40}, r.WorldBounds())
	assert.Equal(t, scene.Point{X: 10, Y: 20}, f.ToLocal(scene.Point{X: 110, Y: 120}))
}

func TestNode_AddToLeafFails(t *testing.T) {
	r := rect(0, 0, 10, 10)
	err := r.Add(rect(0, 0, 1, 1))
	assert.ErrorIs(t, err, scene.ErrNotContainer)
}

func TestNode_AddAncestorFails(t *testing.T) {
	outer := frame(0, 0, 10, 10)
	inner := frame(0, 0, 5, 5)
	require.NoError(t, outer.Add(inner))
	assert.ErrorIs(t, inner.Add(outer), scene.ErrCycle)
}

func TestTree_ChangeNotifications(t *testing.T) {
	tree := scene.NewTree()
	var kinds []scene.ChangeKind
	var attrs []string
	tree.OnChange(func(c scene.Change) {
		kinds = append(kinds, c.Kind)
		attrs = append(attrs, c.Attr)
	})

	r := rect(0, 0, 10, 10)
	require.NoError(t, tree.Add(r))
	r.SetVisible(false)
	r.SetVisible(false) // unchanged, no event
	r.SetName("box")
	r.Detach()

	assert.Equal(t, []scene.ChangeKind{scene.ChildAdded, scene.PropertyChanged, scene.PropertyChanged, scene.ChildRemoved}, kinds)
	assert.Equal(t, []string{"", "visible", "name", ""}, attrs)
}

func TestTree_InnerPointAndVisibleCenter(t *testing.T) {
	tree := scene.NewTree()
	tree.SetViewport(scene.Viewport{Width: 1000, Height: 800, Zoom: 2, PanX: 100, PanY: 40})

	assert.Equal(t, scene.Point{X: 50, Y: 30}, tree.InnerPoint(scene.Point{X: 200, Y: 100}))
	assert.Equal(t, scene.Point{X: 200, Y: 180}, tree.VisibleCenter())
}

func TestTree_HitTestPrefersFrameChildren(t *testing.T) {
	tree := scene.NewTree()
	f := frame(0, 0, 200, 200)
	inner := rect(10, 10, 50, 50)
	require.NoError(t, tree.Add(f))
	require.NoError(t, f.Add(inner))

	assert.Same(t, inner, tree.HitTest(scene.Point{X: 20, Y: 20}))
	assert.Same(t, f, tree.HitTest(scene.Point{X: 150, Y: 150}))
	assert.Nil(t, tree.HitTest(scene.Point{X: 500, Y: 500}))

	inner.SetVisible(false)
	assert.Same(t, f, tree.HitTest(scene.Point{X: 20, Y: 20}))
}

func TestFill_JSON(t *testing.T) {
	solid, err := json.Marshal(scene.Solid("#ff0000"))
	require.NoError(t, err)
	assert.JSONEq(t, `"#ff0000"`, string(solid))

	var g scene.Fill
	require.NoError(t, json.Unmarshal([]byte(`{"type":"linear","stops":[{"offset":0,"color":"#000000"},{"offset":1,"color":"#ffffff"}]}`), &g))
	assert.True(t, g.IsGradient())
	assert.Len(t, g.Stops, 2)
}

func TestCornerRadius_JSON(t *testing.T) {
	var c scene.CornerRadius
	require.NoError(t, json.Unmarshal([]byte(`[4,4,4,4]`), &c))
	assert.Equal(t, 4.0, c.Uniform)
	assert.Empty(t, c.Corners)

	require.NoError(t, json.Unmarshal([]byte(`[1,2,3,4]`), &c))
	assert.Equal(t, []float64{1, 2, 3, 4}, c.Corners)
	assert.Equal(t, 4.0, c.Max())

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3,4]`, string(out))
}

func TestRecord_FrameLabelsAndInternal(t *testing.T) {
	f := frame(0, 0, 100, 100)
	f.Name = "Hero"
	scene.AttachFrameLabel(f)
	require.NoError(t, f.Add(rect(5, 5, 10, 10)))

	label := f.FrameLabel()
	require.NotNil(t, label)
	assert.Equal(t, "Hero", label.Text)
	assert.Equal(t, -20.0, label.Y)

	f.SetName("Landing")
	assert.Equal(t, "Landing", label.Text)

	clip := scene.ToRecord(f, scene.SerializeOptions{ExcludeInternal: true})
	assert.Len(t, clip.Children, 1)

	snap := scene.ToRecord(f, scene.SerializeOptions{})
	require.Len(t, snap.Children, 2)

	// Snapshot restore keeps the label but loses the runtime flag.
	restored, err := scene.FromRecord(snap, scene.BuildOptions{})
	require.NoError(t, err)
	assert.Nil(t, restored.FrameLabel())
	scene.MarkInternal(restored)
	assert.NotNil(t, restored.FrameLabel())

	// Building with fresh labels never duplicates them.
	rebuilt, err := scene.FromRecord(snap, scene.BuildOptions{FrameLabels: true, FreshIDs: true})
	require.NoError(t, err)
	assert.Len(t, rebuilt.Children(), 2)
	assert.NotEqual(t, f.ID, rebuilt.ID)
}

func TestRecord_LegacyFrameLabelPattern(t *testing.T) {
	f := frame(0, 0, 100, 100)
	label := scene.New(scene.TagText)
	label.Y = -20
	label.Editable = false
	label.Hittable = false
	require.NoError(t, f.Add(label))

	scene.MarkInternal(f)
	assert.True(t, label.Internal)
}

func TestFromRecords_SkipsUnknownTags(t *testing.T) {
	var logged []string
	opts := scene.BuildOptions{Logf: func(format string, args ...any) { logged = append(logged, format) }}
	nodes := scene.FromRecords([]scene.Record{
		{Tag: scene.TagRect, Width: 10, Height: 10},
		{Tag: "Hexagon"},
		{Tag: scene.TagGroup, Children: []scene.Record{{Tag: "Blob"}, {Tag: scene.TagEllipse}}},
	}, opts)

	require.Len(t, nodes, 2)
	assert.Len(t, nodes[1].Children(), 1)
	assert.Len(t, logged, 2)
}

func TestToRecord_WorldPosition(t *testing.T) {
	tree := scene.NewTree()
	f := frame(100, 50, 300, 300)
	r := rect(10, 10, 20, 20)
	require.NoError(t, tree.Add(f))
	require.NoError(t, f.Add(r))

	rec := scene.ToRecord(r, scene.SerializeOptions{WorldPosition: true})
	assert.Equal(t, 110.0, rec.X)
	assert.Equal(t, 60.0, rec.Y)
}
