package landmark

import (
	"math"

	"github.com/KyungWonPark/GestureRDM/internal/detect"
)

// VisibleConnections drops every connection touching a hidden landmark
func VisibleConnections(conns []Connection, hidden []int) []Connection {
	skip := make(map[int]bool, len(hidden))
	for _, h := range hidden {
		skip[h] = true
	}

	out := make([]Connection, 0, len(conns))
	for _, c := range conns {
		if skip[c[0]] || skip[c[1]] {
			continue
		}
		out = append(out, c)
	}

	return out
}

// PixelPoint maps a normalised point onto a width x height frame. Points
// outside the frame are not drawn.
func PixelPoint(p detect.Point, width, height int) (int, int, bool) {
	if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 || math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return 0, 0, false
	}

	x := int(math.Min(math.Floor(p.X*float64(width)), float64(width-1)))
	y := int(math.Min(math.Floor(p.Y*float64(height)), float64(height-1)))

	return x, y, true
}
