package globe

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrTooFewDistinctPoints = errors.New("map dataset needs at least two distinct points")
	ErrInvalidArcCount      = errors.New("arc count must be at least 1")
)

// GeoPoint is a geographic coordinate in degrees.
type GeoPoint struct {
	Lat, Lng float64
}

// ArcDescriptor is one animated route. Order only staggers the dash animation.
type ArcDescriptor struct {
	Order    int
	StartLat float64
	StartLng float64
	EndLat   float64
	EndLng   float64
}

func (a ArcDescriptor) Start() GeoPoint { return GeoPoint{a.StartLat, a.StartLng} }
func (a ArcDescriptor) End() GeoPoint { return GeoPoint{a.EndLat, a.EndLng} }

// PointMarker is a static dot at an arc endpoint.
type PointMarker struct {
	Lat, Lng float64
}

// RingPulse anchors a repeating ring wave at an arc endpoint.
type RingPulse struct {
	Lat, Lng float64
}

// Sample is the generated overlay data: n arcs and 2n points and rings,
// start then end for every arc, in arc order.
type Sample struct {
	Arcs   []ArcDescriptor
	Points []PointMarker
	Rings  []RingPulse
}

// GenerateSample picks n random routes between distinct points of the dataset.
//
// Candidates are the distinct coordinates of points (first occurrence wins).
// The end index is drawn from the candidates minus the start, so every arc
// has start != end and generation always terminates.
func GenerateSample(points []GeoPoint, n int, rng *rand.Rand) (Sample, error) {
	if n < 1 {
		return Sample{}, fmt.Errorf("%w: got %d", ErrInvalidArcCount, n)
	}
	if len(points) == 0 {
		return Sample{}, ErrEmptyDataset
	}
	candidates := distinctPoints(points)
	if len(candidates) < 2 {
		return Sample{}, fmt.Errorf("%w: got %d", ErrTooFewDistinctPoints, len(candidates))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := Sample{
		Arcs:   make([]ArcDescriptor, 0, n),
		Points: make([]PointMarker, 0, 2*n),
		Rings:  make([]RingPulse, 0, 2*n),
	}
	for i := 1; i <= n; i++ {
		si := rng.Intn(len(candidates))
		ei := rng.Intn(len(candidates) - 1)
		if ei >= si {
			ei++
		}
		start, end := candidates[si], candidates[ei]

		s.Arcs = append(s.Arcs, ArcDescriptor{
			Order:    i,
			StartLat: start.Lat,
			StartLng: start.Lng,
			EndLat:   end.Lat,
			EndLng:   end.Lng,
		})
		s.Points = append(s.Points, PointMarker{start.Lat, start.Lng}, PointMarker{end.Lat, end.Lng})
		s.Rings = append(s.Rings, RingPulse{start.Lat, start.Lng}, RingPulse{end.Lat, end.Lng})
	}
	return s, nil
}

func distinctPoints(points []GeoPoint) []GeoPoint {
	seen := make(map[GeoPoint]struct{}, len(points))
	out := make([]GeoPoint, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
