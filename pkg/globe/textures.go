package globe

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	dotTextureSize  = 32
	glowTextureSize = 256
)

// dotPixels is a white disc with a one pixel soft edge, premultiplied RGBA.
func dotPixels(size int) []byte {
	pixels := make([]byte, size*size*4)
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			a := clamp(r-math.Sqrt(dx*dx+dy*dy), 0, 1)
			v := uint8(a * 255)
			i := (y*size + x) * 4
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = v, v, v, v
		}
	}
	return pixels
}

// glowPixels is the atmosphere halo: opaque up to inner (a fraction of the
// radius) then fading out quadratically to the edge.
func glowPixels(size int, inner float64) []byte {
	pixels := make([]byte, size*size*4)
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			d := math.Sqrt(dx*dx+dy*dy) / r
			val := 0.0
			switch {
			case d <= inner:
				val = 1
			case d < 1:
				f := 1 - (d-inner)/(1-inner)
				val = f * f
			}
			v := uint8(val * 255)
			i := (y*size + x) * 4
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = v, v, v, v
		}
	}
	return pixels
}

func newTexture(size int, pixels []byte) *ebiten.Image {
	img := ebiten.NewImage(size, size)
	img.WritePixels(pixels)
	return img
}
