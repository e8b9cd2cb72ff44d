package globe

import (
	"image/color"
	"time"

	"github.com/sudorandom/globe-arcs/pkg/utils"
)

// PointStyle draws the endpoint markers as short columns. Radius is in
// degrees of arc, Altitude a fraction of the globe radius.
type PointStyle struct {
	Color              color.NRGBA
	Altitude           float64
	Radius             float64
	Merge              bool
	TransitionDuration time.Duration
}

// Growth is the eased 0..1 progress of the column height transition.
func (s PointStyle) Growth(elapsed float64) float64 {
	if s.TransitionDuration <= 0 {
		return 1
	}
	return utils.EaseOutCubic(utils.Clamp01(elapsed / s.TransitionDuration.Seconds()))
}

// WorldRadius is the marker radius in world units.
func (s PointStyle) WorldRadius() float64 {
	return deg2rad(s.Radius) * GlobeRadius
}

// Markers returns the points to draw. With Merge set, markers sharing a
// coordinate collapse into one.
func (s PointStyle) Markers(points []PointMarker) []PointMarker {
	if !s.Merge {
		return points
	}
	seen := make(map[PointMarker]struct{}, len(points))
	out := make([]PointMarker, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
