package globe

import (
	"context"
	"sync"
	"testing"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is read from the land build goroutine too.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestGlobeReadiness(t *testing.T) {
	clk := newFakeClock()
	g := NewGlobe(GlobeOptions{
		WaitForGlobeReady: true,
		AnimateIn:         true,
		AnimateInDuration: 600 * time.Millisecond,
		HexResolution:     3,
		HexMargin:         0.7,
		Now:               clk.Now,
	})

	assert.False(t, g.Ready())
	assert.False(t, g.Visible())
	assert.Nil(t, g.HexLayer())
	assert.Equal(t, 0.0, g.Scale(clk.Now()))

	require.NoError(t, g.SetPolygons(context.Background(), squareWithHole()))
	assert.True(t, g.Ready())
	assert.True(t, g.Visible())
	assert.NotNil(t, g.HexLayer())

	assert.Equal(t, 0.0, g.Scale(clk.Now()))
	clk.Advance(300 * time.Millisecond)
	assert.InDelta(t, 0.875, g.Scale(clk.Now()), 1e-9)
	clk.Advance(time.Second)
	assert.Equal(t, 1.0, g.Scale(clk.Now()))
}

func TestGlobeWithoutWaitOrAnimation(t *testing.T) {
	g := NewGlobe(GlobeOptions{})
	assert.True(t, g.Visible())
	assert.Equal(t, 1.0, g.Scale(time.Now()))
}

func TestGlobeSetPolygonsError(t *testing.T) {
	g := NewGlobe(GlobeOptions{WaitForGlobeReady: true, HexResolution: 3})
	err := g.SetPolygons(context.Background(), geojson.NewFeatureCollection())
	assert.ErrorIs(t, err, ErrNoPolygons)
	assert.False(t, g.Ready())
	assert.False(t, g.Visible())
}

func TestGlobeSetOverlays(t *testing.T) {
	clk := newFakeClock()
	g := NewGlobe(GlobeOptions{Now: clk.Now})

	_, ok := g.Overlays()
	assert.False(t, ok)

	s := Sample{
		Arcs:   []ArcDescriptor{{Order: 1, StartLat: 0, StartLng: 0, EndLat: 10, EndLng: 10}},
		Points: []PointMarker{{0, 0}, {10, 10}},
		Rings:  []RingPulse{{0, 0}, {10, 10}},
	}
	styles := Styles{Arc: defaultArcStyle(), Ring: defaultRingStyle()}
	g.SetOverlays(s, styles)

	ov, ok := g.Overlays()
	require.True(t, ok)
	assert.Equal(t, clk.Now(), ov.AttachedAt)
	assert.Equal(t, s, ov.Sample)
	require.Len(t, ov.Paths, 1)
	assert.InDelta(t, ov.Paths[0].Angle/4, ov.Paths[0].Altitude, 1e-12)
}
