package globe

import (
	"math"
	"time"
)

// Camera is a perspective camera that looks from Position towards Target.
// View space follows the usual convention: the camera looks down -Z.
type Camera struct {
	FOV    float64 // vertical, degrees
	Aspect float64
	Near   float64
	Far    float64

	Position Vec3
	Target   Vec3
	Up       Vec3

	// Surface size in pixels used by Project.
	Width, Height int

	focal               float64
	right, up, backward Vec3
}

func NewCamera(fov, aspect, near, far float64) *Camera {
	c := &Camera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     Vec3{X: 0, Y: 1, Z: 0},
		Width:  1,
		Height: 1,
	}
	c.UpdateProjection()
	c.LookAt(Vec3{})
	return c
}

// UpdateProjection must be called after FOV or Aspect change.
func (c *Camera) UpdateProjection() {
	c.focal = 1 / math.Tan(deg2rad(c.FOV)/2)
	if c.Aspect <= 0 {
		c.Aspect = 1
	}
}

// LookAt aims the camera and rebuilds its view basis.
func (c *Camera) LookAt(target Vec3) {
	c.Target = target
	c.backward = c.Position.Sub(target).Normalize()
	c.right = c.Up.Cross(c.backward).Normalize()
	if c.right.Norm() == 0 {
		// looking straight along Up
		c.right = Vec3{X: 1, Y: 0, Z: 0}
	}
	c.up = c.backward.Cross(c.right)
}

func (c *Camera) WorldToView(p Vec3) Vec3 {
	d := p.Sub(c.Position)
	return Vec3{X: d.Dot(c.right), Y: d.Dot(c.up), Z: d.Dot(c.backward)}
}

// DirToView rotates a direction into view space without translating it.
func (c *Camera) DirToView(d Vec3) Vec3 {
	return Vec3{X: d.Dot(c.right), Y: d.Dot(c.up), Z: d.Dot(c.backward)}
}

// ViewToScreen maps a view-space point to pixel coordinates. ok is false
// outside the near/far range.
func (c *Camera) ViewToScreen(v Vec3) (x, y float64, ok bool) {
	depth := -v.Z
	if depth < c.Near || depth > c.Far {
		return 0, 0, false
	}
	ndcX := v.X / depth * c.focal / c.Aspect
	ndcY := v.Y / depth * c.focal
	x = (ndcX + 1) / 2 * float64(c.Width)
	y = (1 - ndcY) / 2 * float64(c.Height)
	return x, y, true
}

// Project maps a world point to pixels and returns its distance along the view axis.
func (c *Camera) Project(p Vec3) (x, y, depth float64, ok bool) {
	v := c.WorldToView(p)
	x, y, ok = c.ViewToScreen(v)
	return x, y, -v.Z, ok
}

// PixelsPerUnit is the on-screen size of one world unit at the given depth.
func (c *Camera) PixelsPerUnit(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return float64(c.Height) / 2 * c.focal / depth
}

// Hidden reports whether the sphere of the given radius around the origin
// blocks the line of sight from the camera to p.
func (c *Camera) Hidden(p Vec3, radius float64) bool {
	d := p.Sub(c.Position)
	a := d.Dot(d)
	if a == 0 {
		return false
	}
	b := 2 * c.Position.Dot(d)
	cc := c.Position.Dot(c.Position) - radius*radius
	disc := b*b - 4*a*cc
	if disc <= 0 {
		return false
	}
	t := (-b - math.Sqrt(disc)) / (2 * a)
	return t > 0 && t < 1-1e-3
}

// FrontFacing reports whether a point on the sphere surface faces the camera.
func (c *Camera) FrontFacing(p Vec3) bool {
	return p.Dot(c.Position.Sub(p)) > 0
}

// ProjectedRadius is the on-screen radius in pixels of a sphere of the given
// radius centred at the origin.
func (c *Camera) ProjectedRadius(radius float64) float64 {
	dist := c.Position.Sub(c.Target).Norm()
	if dist <= radius {
		return float64(c.Height)
	}
	angle := math.Asin(radius / dist)
	return math.Tan(angle) * c.focal * float64(c.Height) / 2
}

// Clock hands out the time elapsed between successive frames.
type Clock struct {
	now     func() time.Time
	last    time.Time
	started bool
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Delta returns the seconds since the previous call; the first call starts
// the clock and returns 0.
func (c *Clock) Delta() float64 {
	t := c.now()
	if !c.started {
		c.started = true
		c.last = t
		return 0
	}
	d := t.Sub(c.last).Seconds()
	c.last = t
	if d < 0 {
		return 0
	}
	return d
}

// Now reports the clock's current time without advancing it.
func (c *Clock) Now() time.Time { return c.now() }
