package globe

import (
	"image/color"
	"math"
	"time"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/sudorandom/globe-arcs/pkg/utils"
)

// RingStyle describes the expanding ring waves. Radii are in degrees of arc.
type RingStyle struct {
	Color            color.NRGBA
	MaxRadius        float64
	PropagationSpeed float64 // degrees per second
	RepeatPeriod     time.Duration
}

// Wave is one expanding circle of a ring.
type Wave struct {
	Radius   float64
	Progress float64 // Radius / MaxRadius
}

// Lifetime is how long a single wave takes to reach MaxRadius, in seconds.
func (s RingStyle) Lifetime() float64 {
	if s.PropagationSpeed <= 0 {
		return 0
	}
	return s.MaxRadius / s.PropagationSpeed
}

// ColorAt fades the ring colour out as the wave grows.
func (s RingStyle) ColorAt(progress float64) color.NRGBA {
	c := s.Color
	c.A = uint8(math.Round(float64(c.A) * (1 - utils.Clamp01(progress))))
	return c
}

// Waves returns the waves alive at elapsed seconds after the ring was
// attached. A new wave starts every RepeatPeriod, beginning at zero.
func (s RingStyle) Waves(elapsed float64) []Wave {
	life := s.Lifetime()
	period := s.RepeatPeriod.Seconds()
	if elapsed < 0 || life <= 0 || period <= 0 {
		return nil
	}
	var out []Wave
	for k := math.Floor(elapsed / period); k >= 0; k-- {
		age := elapsed - k*period
		if age >= life {
			break
		}
		r := age * s.PropagationSpeed
		out = append(out, Wave{Radius: r, Progress: r / s.MaxRadius})
	}
	return out
}

// RingCircle returns n+1 surface points (closed) at the given angular radius
// in degrees around center, raised by altitude.
func RingCircle(center GeoPoint, radius, altitude float64, n int) []Vec3 {
	if n < 3 {
		n = 3
	}
	c := center.Point()
	out := make([]Vec3, 0, n+1)
	if radius <= 0 {
		for i := 0; i <= n; i++ {
			out = append(out, pointToWorld(c, altitude))
		}
		return out
	}
	loop := s2.RegularLoop(c, s1.Angle(radius)*s1.Degree, n)
	for _, v := range loop.Vertices() {
		out = append(out, pointToWorld(v, altitude))
	}
	return append(out, out[0])
}
