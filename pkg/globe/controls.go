package globe

import "math"

// OrbitControls keeps the camera on a sphere around Target. With Enabled
// false the user cannot drag or zoom; AutoRotate still turns the camera.
type OrbitControls struct {
	Enabled         bool
	AutoRotate      bool
	AutoRotateSpeed float64 // revolutions per 60 seconds

	MinDistance, MaxDistance float64
	MinPolar, MaxPolar       float64

	Target Vec3

	camera *Camera
	radius float64
	theta  float64 // azimuth around +Y, 0 is +Z
	phi    float64 // polar angle from +Y
}

func NewOrbitControls(cam *Camera) *OrbitControls {
	o := &OrbitControls{
		camera:      cam,
		Target:      cam.Target,
		MinDistance: 0,
		MaxDistance: math.Inf(1),
		MinPolar:    0,
		MaxPolar:    math.Pi,
	}
	off := cam.Position.Sub(o.Target)
	o.radius = off.Norm()
	if o.radius > 0 {
		o.theta = math.Atan2(off.X, off.Z)
		o.phi = math.Acos(clamp(off.Y/o.radius, -1, 1))
	}
	return o
}

// AutoRotationAngle is the azimuth change for delta seconds of auto rotation.
func (o *OrbitControls) AutoRotationAngle(delta float64) float64 {
	return 2 * math.Pi / 60 * o.AutoRotateSpeed * delta
}

// Update advances auto rotation by delta seconds and repositions the camera.
func (o *OrbitControls) Update(delta float64) {
	if o.AutoRotate {
		o.theta -= o.AutoRotationAngle(delta)
		o.theta = math.Remainder(o.theta, 2*math.Pi)
	}
	o.apply()
}

// Rotate orbits by the given azimuth and polar deltas in radians.
func (o *OrbitControls) Rotate(left, up float64) {
	if !o.Enabled {
		return
	}
	o.theta -= left
	o.phi -= up
	o.apply()
}

// Dolly scales the orbit distance; values below 1 move closer.
func (o *OrbitControls) Dolly(scale float64) {
	if !o.Enabled || scale <= 0 {
		return
	}
	o.radius *= scale
	o.apply()
}

func (o *OrbitControls) Azimuth() float64 { return o.theta }
func (o *OrbitControls) Polar() float64 { return o.phi }
func (o *OrbitControls) Distance() float64 { return o.radius }

func (o *OrbitControls) apply() {
	const eps = 1e-6
	o.phi = clamp(o.phi, math.Max(o.MinPolar, eps), math.Min(o.MaxPolar, math.Pi-eps))
	o.radius = clamp(o.radius, o.MinDistance, o.MaxDistance)

	sinPhi := math.Sin(o.phi)
	o.camera.Position = o.Target.Add(Vec3{
		X: o.radius * sinPhi * math.Sin(o.theta),
		Y: o.radius * math.Cos(o.phi),
		Z: o.radius * sinPhi * math.Cos(o.theta),
	})
	o.camera.LookAt(o.Target)
}
