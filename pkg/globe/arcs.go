package globe

import (
	"image/color"
	"math"
	"time"

	"github.com/golang/geo/s2"

	"github.com/sudorandom/globe-arcs/pkg/utils"
)

// ArcStyle is how the arc layer draws its routes. Lengths are relative to
// the arc: 1 is the whole route.
type ArcStyle struct {
	Color              color.NRGBA
	Stroke             float64 // world units
	DashLength         float64
	DashGap            float64
	DashAnimateTime    time.Duration
	TransitionDuration time.Duration
	DashInitialGapStep float64
	AltitudeAutoScale  float64
}

// DashInitialGap staggers the dash of each arc by its order.
func (s ArcStyle) DashInitialGap(order int) float64 {
	return float64(order) * s.DashInitialGapStep
}

// DashVisible reports whether the point at relative length pos of the arc
// is lit at elapsed seconds after attachment.
func (s ArcStyle) DashVisible(order int, elapsed, pos float64) bool {
	period := s.DashLength + s.DashGap
	if period <= 0 || s.DashAnimateTime <= 0 {
		return true
	}
	phase := elapsed/s.DashAnimateTime.Seconds() - s.DashInitialGap(order) - pos
	m := math.Mod(phase, period)
	if m < 0 {
		m += period
	}
	return m < s.DashLength
}

// Growth is the eased 0..1 progress of the altitude transition.
func (s ArcStyle) Growth(elapsed float64) float64 {
	if s.TransitionDuration <= 0 {
		return 1
	}
	return utils.EaseOutCubic(utils.Clamp01(elapsed / s.TransitionDuration.Seconds()))
}

// ArcPath is the geometry of one arc: a great circle between its endpoints
// lifted into a bow.
type ArcPath struct {
	Arc      ArcDescriptor
	Angle    float64 // radians between the endpoints
	Altitude float64 // peak, as a fraction of the globe radius
	from, to s2.Point
}

func NewArcPath(a ArcDescriptor, autoScale float64) ArcPath {
	angle := AngularDistance(a.Start(), a.End())
	return ArcPath{
		Arc:      a,
		Angle:    angle,
		Altitude: angle / 2 * autoScale,
		from:     a.Start().Point(),
		to:       a.End().Point(),
	}
}

// At returns the world position at relative length t along the arc, with
// the bow height scaled by growth. Antipodal endpoints follow a fixed
// great circle through them.
func (p ArcPath) At(t, growth float64) Vec3 {
	lift := p.Altitude * growth * math.Sin(math.Pi*t)
	return pointToWorld(s2.Interpolate(t, p.from, p.to), lift)
}

// Samples splits the arc into n segments and returns the n+1 positions.
func (p ArcPath) Samples(n int, growth float64) []Vec3 {
	if n < 1 {
		n = 1
	}
	out := make([]Vec3, n+1)
	for i := 0; i <= n; i++ {
		out[i] = p.At(float64(i)/float64(n), growth)
	}
	return out
}
