package figma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFileKey(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "file URL", url: "https://www.figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "design URL", url: "https://www.figma.com/design/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "with node-id", url: "https://www.figma.com/design/4gkABR5gEZnIvlCaXmA4KI/Board?node-id=11933-305884", want: "4gkABR5gEZnIvlCaXmA4KI"},
		{name: "without www", url: "https://figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "http scheme", url: "http://www.figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "trailing slash", url: "https://www.figma.com/file/ABC123XYZ/", want: "ABC123XYZ"},
		{name: "key only", url: "https://www.figma.com/file/ABC123XYZ", want: "ABC123XYZ"},
		{name: "missing key", url: "https://www.figma.com/file/", wantErr: true},
		{name: "wrong domain", url: "https://www.example.com/file/ABC123XYZ", wantErr: true},
		{name: "look-alike host", url: "https://figma.com.evil.io/file/ABC123XYZ", wantErr: true},
		{name: "wrong path", url: "https://www.figma.com/dashboard/ABC123XYZ", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFileKey(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractNodeIDs(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []string
	}{
		{name: "colon", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456", want: []string{"123:456"}},
		{name: "dash", url: "https://www.figma.com/design/ABC123/Design?node-id=11933-305884", want: []string{"11933:305884"}},
		{name: "encoded colon", url: "https://www.figma.com/design/ABC123/Design?node-id=1%3A2", want: []string{"1:2"}},
		{name: "extra params", url: "https://www.figma.com/design/ABC123/Design?node-id=11933-305884&t=Obv-1", want: []string{"11933:305884"}},
		{name: "multiple", url: "https://www.figma.com/file/ABC123/Design?node-id=123-456,789:012", want: []string{"123:456", "789:012"}},
		{name: "fragment", url: "https://www.figma.com/file/ABC123/Design#123:456,789:012", want: []string{"123:456", "789:012"}},
		{name: "path", url: "https://www.figma.com/file/ABC123/Design/nodes/123:456", want: []string{"123:456"}},
		{name: "none", url: "https://www.figma.com/file/ABC123/Design", want: []string{}},
		{name: "trimmed", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456, 789:012", want: []string{"123:456", "789:012"}},
		{name: "duplicates", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456,123:456,789:012", want: []string{"123:456", "789:012"}},
		{name: "middle param", url: "https://www.figma.com/file/ABC123/Design?first=v&node-id=123:456&last=v", want: []string{"123:456"}},
		{name: "empty param", url: "https://www.figma.com/file/ABC123/Design?node-id=&other=v", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractNodeIDs(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSource(t *testing.T) {
	key, node, err := ParseSource("https://www.figma.com/design/KEY123/Board?node-id=1-2")
	require.NoError(t, err)
	assert.Equal(t, "KEY123", key)
	assert.Equal(t, "1:2", node)

	key, node, err = ParseSource("figma.com/file/KEY123/Board")
	require.NoError(t, err)
	assert.Equal(t, "KEY123", key)
	assert.Empty(t, node)

	key, node, err = ParseSource("  KEY123  ")
	require.NoError(t, err)
	assert.Equal(t, "KEY123", key)
	assert.Empty(t, node)

	_, _, err = ParseSource("not a key!")
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, _, err = ParseSource("https://www.figma.com/proto/KEY123")
	assert.ErrorIs(t, err, ErrInvalidSource)
}
