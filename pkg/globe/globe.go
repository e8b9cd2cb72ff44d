package globe

import (
	"context"
	"image/color"
	"sync"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/rs/zerolog/log"

	"github.com/sudorandom/globe-arcs/pkg/utils"
)

// GlobeOptions configures the base globe.
type GlobeOptions struct {
	WaitForGlobeReady bool
	AnimateIn         bool
	AnimateInDuration time.Duration

	HexColor      color.NRGBA
	HexResolution int
	HexMargin     float64

	ShowAtmosphere     bool
	AtmosphereColor    color.NRGBA
	AtmosphereAltitude float64

	// Now defaults to time.Now.
	Now func() time.Time
}

// Styles groups the per-layer styles of the overlays.
type Styles struct {
	Arc   ArcStyle
	Point PointStyle
	Ring  RingStyle
}

// Overlays is a snapshot of the attached arcs, points and rings.
type Overlays struct {
	Sample     Sample
	Paths      []ArcPath
	Styles     Styles
	AttachedAt time.Time
}

// Globe holds the layers of the globe. Polygons and overlays are set from
// other goroutines, so every field behind mu is read through a method.
type Globe struct {
	opts GlobeOptions

	mu       sync.RWMutex
	hex      *HexLayer
	readyAt  time.Time
	overlays *Overlays
}

func NewGlobe(opts GlobeOptions) *Globe {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Globe{opts: opts}
}

func (g *Globe) Options() GlobeOptions { return g.opts }

// SetPolygons builds the dotted land layer and marks the globe ready.
func (g *Globe) SetPolygons(ctx context.Context, fc *geojson.FeatureCollection) error {
	start := time.Now()
	layer, err := BuildHexLayer(ctx, fc, g.opts.HexResolution, g.opts.HexMargin)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.hex = layer
	g.readyAt = g.opts.Now()
	g.mu.Unlock()

	log.Debug().
		Int("dots", len(layer.Dots)).
		Int("resolution", g.opts.HexResolution).
		Dur("took", time.Since(start)).
		Msg("Land layer built")
	return nil
}

// Ready reports whether the land layer has been built.
func (g *Globe) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hex != nil
}

// Visible reports whether anything should be drawn yet.
func (g *Globe) Visible() bool {
	return !g.opts.WaitForGlobeReady || g.Ready()
}

// Scale is the animate-in size factor of the globe at now.
func (g *Globe) Scale(now time.Time) float64 {
	if !g.opts.AnimateIn || g.opts.AnimateInDuration <= 0 {
		return 1
	}
	g.mu.RLock()
	ready, at := g.hex != nil, g.readyAt
	g.mu.RUnlock()
	if !ready {
		return 0
	}
	return utils.EaseOutCubic(utils.Clamp01(now.Sub(at).Seconds() / g.opts.AnimateInDuration.Seconds()))
}

func (g *Globe) HexLayer() *HexLayer {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hex
}

// SetOverlays attaches arcs, points and rings in one step and records the
// attach time that drives their transitions.
func (g *Globe) SetOverlays(s Sample, styles Styles) {
	paths := make([]ArcPath, len(s.Arcs))
	for i, a := range s.Arcs {
		paths[i] = NewArcPath(a, styles.Arc.AltitudeAutoScale)
	}
	o := &Overlays{Sample: s, Paths: paths, Styles: styles, AttachedAt: g.opts.Now()}

	g.mu.Lock()
	g.overlays = o
	g.mu.Unlock()

	log.Info().
		Int("arcs", len(s.Arcs)).
		Int("points", len(s.Points)).
		Int("rings", len(s.Rings)).
		Msg("Overlays attached")
}

// Overlays returns the attached overlays, or false before attachment.
func (g *Globe) Overlays() (*Overlays, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.overlays, g.overlays != nil
}
