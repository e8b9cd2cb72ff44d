package globe

import (
	"image"
	"image/color"
	"math"

	"github.com/sudorandom/globe-arcs/pkg/utils"
)

// rgb is a linear colour with unbounded channels, used while accumulating light.
type rgb struct{ R, G, B float64 }

func rgbOf(c color.NRGBA) rgb {
	return rgb{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

func (c rgb) add(o rgb) rgb { return rgb{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c rgb) mul(o rgb) rgb { return rgb{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c rgb) scale(s float64) rgb { return rgb{c.R * s, c.G * s, c.B * s} }
func (c rgb) mix(o rgb, t float64) rgb {
	return rgb{utils.Lerp(c.R, o.R, t), utils.Lerp(c.G, o.G, t), utils.Lerp(c.B, o.B, t)}
}

func (c rgb) nrgba(alpha float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(math.Round(utils.Clamp01(c.R) * 255)),
		G: uint8(math.Round(utils.Clamp01(c.G) * 255)),
		B: uint8(math.Round(utils.Clamp01(c.B) * 255)),
		A: uint8(math.Round(utils.Clamp01(alpha) * 255)),
	}
}

// DirectionalLight shines from Position towards the globe centre.
type DirectionalLight struct {
	Color     color.NRGBA
	Intensity float64
	Position  Vec3
}

// PointLight shines from Position in all directions, without decay.
type PointLight struct {
	Color     color.NRGBA
	Intensity float64
	Position  Vec3
}

type AmbientLight struct {
	Color     color.NRGBA
	Intensity float64
}

// Lighting holds the lights of the scene. Positions are in view space: the
// lights ride along with the camera, so the lit side of the globe always
// faces the same way on screen.
type Lighting struct {
	Directional []DirectionalLight
	Points      []PointLight
	Ambient     AmbientLight
}

// Material is the globe surface shading.
type Material struct {
	Color             color.NRGBA
	Emissive          color.NRGBA
	EmissiveIntensity float64
	Shininess         float64
	Specular          color.NRGBA
}

// Fog blends distant fragments towards Color between Near and Far.
type Fog struct {
	Color     color.NRGBA
	Near, Far float64
}

// Factor is the fog amount at the given view depth, eased like a smoothstep.
func (f Fog) Factor(depth float64) float64 {
	if f.Far <= f.Near {
		return 0
	}
	t := utils.Clamp01((depth - f.Near) / (f.Far - f.Near))
	return t * t * (3 - 2*t)
}

// Apply blends c towards the fog colour for the given depth, keeping alpha.
func (f Fog) Apply(c color.NRGBA, depth float64) color.NRGBA {
	k := f.Factor(depth)
	if k == 0 {
		return c
	}
	return rgbOf(c).mix(rgbOf(f.Color), k).nrgba(float64(c.A) / 255)
}

// Shade computes Blinn-Phong lighting for a surface point. normal and pos are
// in view space; center is the view-space position of the globe centre,
// which directional lights aim at.
func (l *Lighting) Shade(m Material, normal, pos, center Vec3) color.NRGBA {
	n := normal.Normalize()
	v := pos.Mul(-1).Normalize()
	base := rgbOf(m.Color)
	spec := rgbOf(m.Specular)

	out := rgbOf(l.Ambient.Color).scale(l.Ambient.Intensity).mul(base)
	contrib := func(c color.NRGBA, intensity float64, dir Vec3) {
		ndl := n.Dot(dir)
		if ndl <= 0 {
			return
		}
		lc := rgbOf(c).scale(intensity)
		out = out.add(lc.mul(base).scale(ndl))
		h := dir.Add(v).Normalize()
		if ndh := n.Dot(h); ndh > 0 {
			out = out.add(lc.mul(spec).scale(math.Pow(ndh, math.Max(m.Shininess, 1e-4))))
		}
	}
	for _, d := range l.Directional {
		contrib(d.Color, d.Intensity, d.Position.Sub(center).Normalize())
	}
	for _, p := range l.Points {
		contrib(p.Color, p.Intensity, p.Position.Sub(pos).Normalize())
	}
	out = out.add(rgbOf(m.Emissive).scale(m.EmissiveIntensity))
	return out.nrgba(1)
}

// ShadeSphere renders the lit globe body as a size×size disc. dist is the
// camera distance to the globe centre.
func (l *Lighting) ShadeSphere(m Material, fog Fog, size int, dist float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	if size <= 0 {
		return img
	}
	center := Vec3{X: 0, Y: 0, Z: -dist}
	half := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			nx := (float64(x) + 0.5 - half) / half
			ny := (half - float64(y) - 0.5) / half
			r2 := nx*nx + ny*ny
			if r2 > 1 {
				continue
			}
			// 1px antialiased rim
			coverage := utils.Clamp01((1 - math.Sqrt(r2)) * half)
			normal := Vec3{X: nx, Y: ny, Z: math.Sqrt(1 - r2)}
			pos := center.Add(normal.Mul(GlobeRadius))
			c := fog.Apply(l.Shade(m, normal, pos, center), -pos.Z)
			c.A = uint8(math.Round(coverage * 255))
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
