package globe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func alphaAt(pixels []byte, size, x, y int) uint8 {
	return pixels[(y*size+x)*4+3]
}

func TestDotPixels(t *testing.T) {
	const size = 32
	px := dotPixels(size)
	assert.Len(t, px, size*size*4)
	assert.Equal(t, uint8(255), alphaAt(px, size, 16, 16))
	assert.Equal(t, uint8(0), alphaAt(px, size, 0, 0))

	// premultiplied: colour never exceeds alpha
	for i := 0; i < len(px); i += 4 {
		assert.LessOrEqual(t, px[i], px[i+3])
	}
}

func TestGlowPixels(t *testing.T) {
	const size = 100
	px := glowPixels(size, 0.8)
	assert.Equal(t, uint8(255), alphaAt(px, size, 50, 50))
	assert.Equal(t, uint8(255), alphaAt(px, size, 50+35, 50))
	assert.Equal(t, uint8(0), alphaAt(px, size, 0, 0))

	// fades out past the globe edge
	a1 := alphaAt(px, size, 50+42, 50)
	a2 := alphaAt(px, size, 50+47, 50)
	assert.Greater(t, a1, a2)
	assert.Less(t, a1, uint8(255))
}
