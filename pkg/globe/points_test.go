package globe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPointMarkersMerge(t *testing.T) {
	points := []PointMarker{{1, 2}, {3, 4}, {1, 2}, {5, 6}, {3, 4}}

	merged := PointStyle{Merge: true}.Markers(points)
	assert.Equal(t, []PointMarker{{1, 2}, {3, 4}, {5, 6}}, merged)

	assert.Equal(t, points, PointStyle{}.Markers(points))
}

func TestPointStyle(t *testing.T) {
	s := PointStyle{Radius: 0.05, Altitude: 0.045, TransitionDuration: 3500 * time.Millisecond}
	assert.InDelta(t, 0.0872664, s.WorldRadius(), 1e-6)
	assert.Equal(t, 0.0, s.Growth(0))
	assert.Equal(t, 1.0, s.Growth(3.5))
	assert.Equal(t, 1.0, PointStyle{}.Growth(0))
}
