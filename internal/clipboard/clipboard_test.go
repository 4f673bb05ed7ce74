package clipboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectorboard/internal/clipboard"
	"vectorboard/internal/scene"
)

func TestClipboard_CascadingPaste(t *testing.T) {
	r := scene.New(scene.TagRect)
	r.X, r.Y, r.Width, r.Height = 10, 10, 30, 30

	c := clipboard.New(0, nil)
	require.Equal(t, 1, c.Copy([]*scene.Node{r}))

	first := c.Paste()
	second := c.Paste()
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, 30.0, first[0].X)
	assert.Equal(t, 50.0, second[0].X)
	assert.NotEqual(t, r.ID, first[0].ID)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	c.ResetOffset()
	third := c.Paste()
	assert.Equal(t, 30.0, third[0].X)
}

func TestClipboard_ExcludesInternalAndRebuildsLabels(t *testing.T) {
	f := scene.New(scene.TagFrame)
	f.Name = "Card"
	f.Width, f.Height = 100, 100
	scene.AttachFrameLabel(f)
	require.NoError(t, f.Add(scene.New(scene.TagEllipse)))

	c := clipboard.New(10, nil)
	c.Copy([]*scene.Node{f, f.FrameLabel()})
	require.Equal(t, 1, c.Len())
	assert.Len(t, c.Records()[0].Children, 1)

	pasted := c.Paste()
	require.Len(t, pasted, 1)
	label := pasted[0].FrameLabel()
	require.NotNil(t, label)
	assert.Equal(t, "Card", label.Text)
	assert.Len(t, pasted[0].Children(), 2)
}

func TestClipboard_NestedCopyUsesWorldPosition(t *testing.T) {
	tree := scene.NewTree()
	f := scene.New(scene.TagFrame)
	f.X, f.Y, f.Width, f.Height = 200, 100, 400, 400
	r := scene.New(scene.TagRect)
	r.X, r.Y, r.Width, r.Height = 5, 5, 10, 10
	require.NoError(t, tree.Add(f))
	require.NoError(t, f.Add(r))

	c := clipboard.New(20, nil)
	c.Copy([]*scene.Node{r})
	pasted := c.Paste()
	require.Len(t, pasted, 1)
	assert.Equal(t, 225.0, pasted[0].X)
	assert.Equal(t, 125.0, pasted[0].Y)
}

func TestClipboard_PasteEmpty(t *testing.T) {
	c := clipboard.New(20, nil)
	assert.True(t, c.Empty())
	assert.Nil(t, c.Paste())
}

func TestDuplicate(t *testing.T) {
	r := scene.New(scene.TagRect)
	r.Name = "btn"
	dup := clipboard.Duplicate(r, 0, nil)
	require.NotNil(t, dup)
	assert.Equal(t, "btn", dup.Name)
	assert.Equal(t, float64(clipboard.DefaultStep), dup.X)
	assert.NotEqual(t, r.ID, dup.ID)

	assert.Nil(t, clipboard.Duplicate(scene.NewFrameLabel("x"), 0, nil))
}
