package mcpserver

import (
	"math"

	"vectorboard/internal/scene"
)

const (
	GridSize = 20.0
	Padding  = 40.0 // 2 grid cells between shapes
	MaxRowW  = 1600.0
)

// LayoutEngine places agent-created shapes so they don't overlap what is
// already on the board.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

func overlaps(a, b scene.Bounds) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

func (le *LayoutEngine) padded(b scene.Bounds) scene.Bounds {
	return scene.Bounds{
		X:      b.X - le.padding,
		Y:      b.Y - le.padding,
		Width:  b.Width + le.padding*2,
		Height: b.Height + le.padding*2,
	}
}

// NextPosition scans grid positions row by row from origin and returns the
// first one where a w×h box clears every existing box by the padding.
func (le *LayoutEngine) NextPosition(existing []scene.Bounds, origin scene.Point, w, h float64) scene.Point {
	startX, startY := le.snap(origin.X), le.snap(origin.Y)
	if len(existing) == 0 {
		return scene.Point{X: startX, Y: startY}
	}

	occupied := make([]scene.Bounds, len(existing))
	for i, b := range existing {
		occupied[i] = le.padded(b)
	}

	candidate := scene.Bounds{Width: w, Height: h}
	for y := startY; y < startY+50000; y += le.gridSize {
		for x := startX; x < startX+le.maxRowW; x += le.gridSize {
			candidate.X, candidate.Y = x, y
			free := true
			for _, occ := range occupied {
				if overlaps(candidate, occ) {
					free = false
					break
				}
			}
			if free {
				return scene.Point{X: x, Y: y}
			}
		}
	}

	// Fallback: below everything
	maxY := startY
	for _, b := range existing {
		maxY = math.Max(maxY, b.Y+b.Height)
	}
	return scene.Point{X: startX, Y: le.snap(maxY + le.padding)}
}

// ArrangeGroup lays boxes out left to right from (startX, startY), wrapping
// rows at the maximum row width. It returns the new top-left corners.
func (le *LayoutEngine) ArrangeGroup(boxes []scene.Bounds, startX, startY float64) []scene.Point {
	out := make([]scene.Point, len(boxes))
	x0 := le.snap(startX)
	x, y := x0, le.snap(startY)
	rowHeight := 0.0

	for i, b := range boxes {
		if x > x0 && x+b.Width > x0+le.maxRowW {
			x = x0
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		out[i] = scene.Point{X: x, Y: y}
		rowHeight = math.Max(rowHeight, b.Height)
		x += le.snap(b.Width + le.padding)
	}
	return out
}
