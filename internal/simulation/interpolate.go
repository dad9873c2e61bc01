package simulation

import (
	"math"

	"github.com/ukydev/emergency-priority/internal/geo"
)

// PositionAt maps progress in [0,1] onto the polyline by piecewise linear
// interpolation between the two bracketing points.
func PositionAt(points []geo.Point, progress float64) geo.Point {
	n := len(points)
	switch {
	case n == 0:
		return geo.Point{}
	case n == 1 || progress <= 0:
		return points[0]
	case progress >= 1:
		return points[n-1]
	}

	t := progress * float64(n-1)
	idx := int(math.Floor(t))
	if idx > n-2 {
		idx = n - 2
	}
	return geo.Lerp(points[idx], points[idx+1], t-float64(idx))
}
