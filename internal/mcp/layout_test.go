package mcpserver

import (
	"testing"

	"vectorboard/internal/scene"
)

func TestNextPosition_EmptyBoard(t *testing.T) {
	le := NewLayoutEngine()
	p := le.NextPosition(nil, scene.Point{X: 13, Y: 29}, 200, 100)
	if p.X != 20 || p.Y != 20 {
		t.Errorf("expected snapped origin (20, 20), got (%.0f, %.0f)", p.X, p.Y)
	}
}

func TestNextPosition_AvoidsExisting(t *testing.T) {
	le := NewLayoutEngine()
	existing := []scene.Bounds{
		{X: 0, Y: 0, Width: 200, Height: 100},
		{X: 240, Y: 0, Width: 200, Height: 100},
	}
	p := le.NextPosition(existing, scene.Point{}, 200, 100)

	r := scene.Bounds{X: p.X, Y: p.Y, Width: 200, Height: 100}
	for _, b := range existing {
		if overlaps(r, le.padded(b)) {
			t.Errorf("position (%.0f, %.0f) overlaps box at (%.0f, %.0f)", p.X, p.Y, b.X, b.Y)
		}
	}
	if p.Y != 0 {
		t.Errorf("expected a slot on the first row, got y=%.0f", p.Y)
	}
}

func TestArrangeGroup(t *testing.T) {
	le := NewLayoutEngine()
	boxes := []scene.Bounds{
		{Width: 700, Height: 200},
		{Width: 700, Height: 300},
		{Width: 700, Height: 200},
	}

	pos := le.ArrangeGroup(boxes, 0, 0)
	if len(pos) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(pos))
	}

	placed := make([]scene.Bounds, len(boxes))
	for i, b := range boxes {
		placed[i] = scene.Bounds{X: pos[i].X, Y: pos[i].Y, Width: b.Width, Height: b.Height}
	}
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			if overlaps(placed[i], placed[j]) {
				t.Errorf("boxes %d and %d overlap: %+v and %+v", i, j, placed[i], placed[j])
			}
		}
	}
	// Two 700-wide boxes fit in a row; the third wraps below the taller one.
	if pos[1].Y != 0 || pos[2].X != 0 || pos[2].Y != 340 {
		t.Errorf("unexpected wrapping: %+v", pos)
	}
}

func TestSnap(t *testing.T) {
	le := NewLayoutEngine()
	tests := []struct {
		input, want float64
	}{
		{0, 0},
		{9, 0},
		{10, 20},
		{29, 20},
		{31, 40},
		{-11, -20},
	}
	for _, tt := range tests {
		if got := le.snap(tt.input); got != tt.want {
			t.Errorf("snap(%.0f) = %.0f, want %.0f", tt.input, got, tt.want)
		}
	}
}
