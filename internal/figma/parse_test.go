package figma

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectorboard/internal/scene"
)

type recordingLogger struct{ warnings []string }

func (l *recordingLogger) Infof(string, ...any) {}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Errorf(string, ...any) {}

const restFile = `{
  "name": "Board",
  "version": "123",
  "document": {
    "id": "0:0", "type": "DOCUMENT",
    "children": [{
      "id": "0:1", "type": "CANVAS", "name": "Page 1",
      "children": [{
        "id": "1:1", "type": "FRAME", "name": "Card",
        "absoluteBoundingBox": {"x": 100, "y": 50, "width": 200, "height": 120},
        "clipsContent": true,
        "cornerRadius": 8,
        "fills": [{"type": "SOLID", "color": {"r": 1, "g": 1, "b": 1}}],
        "children": [
          {
            "id": "1:2", "type": "TEXT", "name": "Title", "characters": "Hello",
            "absoluteBoundingBox": {"x": 110, "y": 60, "width": 80, "height": 20},
            "style": {"fontFamily": "Inter", "fontWeight": 700, "fontSize": 16, "lineHeightPx": 24, "textAlignHorizontal": "CENTER"}
          },
          {
            "id": "1:3", "type": "RECTANGLE", "name": "Hidden", "visible": false,
            "absoluteBoundingBox": {"x": 0, "y": 0, "width": 10, "height": 10}
          },
          {
            "id": "1:4", "type": "ELLIPSE", "name": "Dot", "rotation": 30, "opacity": 0.5,
            "absoluteBoundingBox": {"x": 150, "y": 100, "width": 10, "height": 10},
            "fills": [{"type": "SOLID", "opacity": 0.5, "color": {"r": 1, "g": 0, "b": 0}}],
            "strokes": [{"type": "SOLID", "color": {"r": 0, "g": 0, "b": 1}}], "strokeWeight": 2
          },
          {"id": "1:5", "type": "STICKY", "name": "Note"}
        ]
      }]
    }]
  }
}`

func TestParse_REST(t *testing.T) {
	logger := &recordingLogger{}
	records, err := Parse([]byte(restFile), ParseOptions{Logger: logger})
	require.NoError(t, err)
	require.Len(t, records, 1)

	card := records[0]
	assert.Equal(t, scene.TagFrame, card.Tag)
	assert.Equal(t, "Card", card.Name)
	assert.Equal(t, 100.0, card.X)
	assert.Equal(t, "hidden", card.Overflow)
	assert.Equal(t, "#ffffff", card.Fill.Color)
	assert.Equal(t, 8.0, card.CornerRadius.Uniform)
	require.Len(t, card.Children, 2, "hidden and unsupported children are skipped")

	title := card.Children[0]
	assert.Equal(t, scene.TagText, title.Tag)
	assert.Equal(t, "Hello", title.Text)
	assert.Equal(t, 10.0, title.X)
	assert.Equal(t, 10.0, title.Y)
	assert.Equal(t, "#000000", title.Fill.Color)
	assert.Equal(t, "bold", title.FontWeight)
	assert.Equal(t, "center", title.TextAlign)
	require.NotNil(t, title.LineHeight)
	assert.Equal(t, "percent", title.LineHeight.Type)
	assert.InDelta(t, 1.5, title.LineHeight.Value, 1e-9)

	dot := card.Children[1]
	assert.Equal(t, scene.TagEllipse, dot.Tag)
	assert.Equal(t, -30.0, dot.Rotation)
	assert.Equal(t, "rgba(255, 0, 0, 0.50)", dot.Fill.Color)
	assert.Equal(t, "#0000ff", dot.Stroke)
	assert.Equal(t, 2.0, dot.StrokeWidth)
	require.NotNil(t, dot.Opacity)
	assert.Equal(t, 0.5, *dot.Opacity)

	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "STICKY")
}

func TestParse_RESTNodeID(t *testing.T) {
	records, err := Parse([]byte(restFile), ParseOptions{NodeID: "1:4", Logger: &recordingLogger{}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Dot", records[0].Name)

	records, err = Parse([]byte(restFile), ParseOptions{NodeID: "9:9", Logger: &recordingLogger{}})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_RESTBareDocument(t *testing.T) {
	data := `{"type": "DOCUMENT", "children": [
		{"type": "RECTANGLE", "name": "Box", "absoluteBoundingBox": {"x": 5, "y": 6, "width": 7, "height": 8}, "rectangleCornerRadii": [1, 2, 3, 4]},
		{"type": "VECTOR", "name": "Path", "size": {"x": 3, "y": 4}},
		{"type": "BOOLEAN_OPERATION", "name": "Union", "children": []},
		{"type": "SECTION", "name": "Area", "cornerRadius": 6}
	]}`
	records, err := Parse([]byte(data), ParseOptions{Logger: &recordingLogger{}})
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, scene.TagRect, records[0].Tag)
	assert.Equal(t, []float64{1, 2, 3, 4}, records[0].CornerRadius.Corners)

	assert.Equal(t, scene.TagRect, records[1].Tag)
	assert.Equal(t, "[Vector] Path", records[1].Name)
	assert.Equal(t, 3.0, records[1].Width)

	assert.Equal(t, scene.TagGroup, records[2].Tag)
	assert.Equal(t, "[Boolean] Union", records[2].Name)

	assert.Equal(t, scene.TagFrame, records[3].Tag)
	assert.Nil(t, records[3].CornerRadius)
	assert.Empty(t, records[3].Overflow)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(nil, ParseOptions{})
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = Parse([]byte(`{not json`), ParseOptions{})
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = Parse([]byte(`{"document": {"type": "DOCUMENT"}}`), ParseOptions{})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestParse_Native(t *testing.T) {
	data := `{"version": 1, "children": [
		{"id": "a", "type": "frame", "name": "Panel", "x": 10, "y": 20, "width": 300, "height": 200, "clip": true,
		 "fill": "#fafafa", "cornerRadius": [4, 4, 0, 0],
		 "children": [
			{"id": "b", "type": "text", "characters": "Hi", "x": 5, "y": 5, "width": 40, "height": 20, "fontWeight": 600, "lineHeight": 18},
			{"id": "c", "type": "line", "x": 0, "y": 50, "width": 120, "height": 0},
			{"id": "d", "type": "image", "src": "https://img/x.png", "x": 0, "y": 0, "width": 10, "height": 10},
			{"id": "e", "type": "sticker", "x": 0}
		 ]},
		{"id": "f", "type": "circle", "x": 0, "y": 0, "width": 10, "height": 10,
		 "fill": {"type": "linear", "stops": [{"offset": 0, "color": "#000"}, {"offset": 1, "color": "#fff"}]}}
	]}`
	logger := &recordingLogger{}
	records, err := Parse([]byte(data), ParseOptions{Logger: logger})
	require.NoError(t, err)
	require.Len(t, records, 2)

	panel := records[0]
	assert.Equal(t, scene.TagFrame, panel.Tag)
	assert.Equal(t, "hidden", panel.Overflow)
	assert.Equal(t, "#fafafa", panel.Fill.Color)
	assert.Equal(t, []float64{4, 4, 0, 0}, panel.CornerRadius.Corners)
	require.Len(t, panel.Children, 3)

	text := panel.Children[0]
	assert.Equal(t, "Hi", text.Text)
	assert.Equal(t, "600", text.FontWeight)
	require.NotNil(t, text.LineHeight)
	assert.Equal(t, 18.0, text.LineHeight.Value)

	assert.Equal(t, []float64{0, 0, 120, 0}, panel.Children[1].Points)
	assert.Equal(t, "https://img/x.png", panel.Children[2].URL)

	circle := records[1]
	assert.Equal(t, scene.TagEllipse, circle.Tag)
	assert.True(t, circle.Fill.IsGradient())
	assert.Len(t, logger.warnings, 1)
}

func TestParse_NativeSingleNode(t *testing.T) {
	data := `{"id": "x", "type": "rect", "name": "Solo", "x": 1, "width": 2, "height": 3, "fontWeight": "bold"}`
	records, err := Parse([]byte(data), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, scene.TagRect, records[0].Tag)
	assert.Equal(t, "Solo", records[0].Name)

	nested := `{"version": "1", "children": [{"type": "group", "x": 0, "children": [{"id": "deep", "type": "star", "x": 3, "width": 4}]}]}`
	records, err = Parse([]byte(nested), ParseOptions{NodeID: "deep"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, scene.TagStar, records[0].Tag)
}

func TestParse_FormatsAgree(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "rest",
			data: `{"name": "F", "version": "1", "document": {"id": "0:0", "type": "DOCUMENT", "children": [
				{"id": "0:1", "type": "CANVAS", "children": [
					{"id": "1:1", "type": "FRAME", "rotation": 10,
					 "absoluteBoundingBox": {"x": 100, "y": 50, "width": 200, "height": 120},
					 "children": [
						{"id": "1:2", "type": "RECTANGLE",
						 "absoluteBoundingBox": {"x": 110, "y": 70, "width": 30, "height": 40}}
					 ]}
				]}
			]}}`,
		},
		{
			name: "native",
			data: `{"version": 1, "children": [
				{"id": "a", "type": "frame", "x": 100, "y": 50, "width": 200, "height": 120, "rotation": -10,
				 "children": [{"id": "b", "type": "rect", "x": 10, "y": 20, "width": 30, "height": 40}]}
			]}`,
		},
	}

	type box struct {
		tag                            scene.Tag
		x, y, width, height, rotation float64
	}
	want := []box{
		{scene.TagFrame, 100, 50, 200, 120, -10},
		{scene.TagRect, 10, 20, 30, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse([]byte(tt.data), ParseOptions{Logger: &recordingLogger{}})
			require.NoError(t, err)
			require.Len(t, records, 1)
			require.Len(t, records[0].Children, 1)

			got := []scene.Record{records[0], records[0].Children[0]}
			for i, w := range want {
				r := got[i]
				assert.Equal(t, w.tag, r.Tag)
				assert.InDelta(t, w.x, r.X, 1e-9)
				assert.InDelta(t, w.y, r.Y, 1e-9)
				assert.InDelta(t, w.width, r.Width, 1e-9)
				assert.InDelta(t, w.height, r.Height, 1e-9)
				assert.InDelta(t, w.rotation, r.Rotation, 1e-9)
			}
		})
	}
}

func TestFontWeight(t *testing.T) {
	assert.Equal(t, "bold", fontWeight([]byte(`"bold"`)))
	assert.Equal(t, "700", fontWeight([]byte(`700`)))
	assert.Equal(t, "", fontWeight(nil))
	assert.Equal(t, "", fontWeight([]byte(`{}`)))
}
