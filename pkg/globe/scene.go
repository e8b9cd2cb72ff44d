package globe

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sudorandom/globe-arcs/pkg/config"
	"github.com/sudorandom/globe-arcs/pkg/utils"
)

// Scene owns everything one running globe needs: camera, controls, lights,
// the globe and the pending overlay attachment. Close tears it down.
type Scene struct {
	Config   *config.Config
	Datasets *Datasets
	Sample   Sample
	Styles   Styles

	Camera   *Camera
	Controls *OrbitControls
	Lighting *Lighting
	Fog      Fog
	Material Material
	Globe    *Globe
	Clock    *Clock

	// Audio is stopped on Close when set.
	Audio *AudioPlayer

	Width, Height int

	mu       sync.Mutex
	closed   bool
	attach   *time.Timer
	attached chan struct{}
	cancel   context.CancelFunc
	built    chan struct{}
}

// NewScene composes a scene from the configuration and datasets. The land
// layer is built in the background; arcs, points and rings are attached
// once cfg.AttachDelay has passed.
func NewScene(cfg *config.Config, d *Datasets, rng *rand.Rand) (*Scene, error) {
	return newScene(cfg, d, rng, time.Now)
}

func newScene(cfg *config.Config, d *Datasets, rng *rand.Rand, now func() time.Time) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d == nil || d.Land == nil {
		return nil, ErrNoPolygons
	}

	sample, err := GenerateSample(d.Points(), cfg.ArcCount, rng)
	if err != nil {
		return nil, fmt.Errorf("generate sample: %w", err)
	}

	s := &Scene{
		Config:   cfg,
		Datasets: d,
		Sample:   sample,
		Styles:   stylesFromConfig(cfg),
		Lighting: lightingFromConfig(cfg),
		Fog: Fog{
			Color: utils.MustParseColor(cfg.Fog.Color),
			Near:  cfg.Fog.Near,
			Far:   cfg.Fog.Far,
		},
		Material: Material{
			Color:             utils.MustParseColor(cfg.Material.Color),
			Emissive:          utils.MustParseColor(cfg.Material.Emissive),
			EmissiveIntensity: cfg.Material.EmissiveIntensity,
			Shininess:         cfg.Material.Shininess,
			Specular:          utils.HexColor(0x111111),
		},
		Clock:    NewClock(now),
		attached: make(chan struct{}),
		built:    make(chan struct{}),
	}

	s.Camera = NewCamera(cfg.Camera.FOV, 1, cfg.Camera.Near, cfg.Camera.Far)
	s.Camera.Position = Vec3{X: cfg.Camera.Position.X, Y: cfg.Camera.Position.Y, Z: cfg.Camera.Position.Z}
	s.Camera.LookAt(Vec3{})
	s.Resize(cfg.Surface.Width, cfg.Surface.Height)

	s.Controls = NewOrbitControls(s.Camera)
	s.Controls.Enabled = cfg.Controls.Enabled
	s.Controls.AutoRotate = cfg.Controls.AutoRotate
	s.Controls.AutoRotateSpeed = cfg.Controls.AutoRotateSpeed
	s.Controls.MinDistance = cfg.Controls.MinDistance
	s.Controls.MaxDistance = cfg.Controls.MaxDistance

	s.Globe = NewGlobe(GlobeOptions{
		WaitForGlobeReady:  cfg.Globe.WaitForGlobeReady,
		AnimateIn:          cfg.Globe.AnimateIn,
		AnimateInDuration:  cfg.Globe.AnimateInDuration,
		HexColor:           utils.MustParseColor(cfg.Globe.HexColor),
		HexResolution:      cfg.Globe.HexResolution,
		HexMargin:          cfg.Globe.HexMargin,
		ShowAtmosphere:     cfg.Globe.ShowAtmosphere,
		AtmosphereColor:    utils.MustParseColor(cfg.Globe.AtmosphereColor),
		AtmosphereAltitude: cfg.Globe.AtmosphereAltitude,
		Now:                now,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer close(s.built)
		if err := s.Globe.SetPolygons(ctx, d.Land); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Failed to build land layer")
		}
	}()

	s.attach = time.AfterFunc(cfg.AttachDelay, s.attachOverlays)

	log.Info().
		Int("arcs", len(sample.Arcs)).
		Int("width", s.Width).
		Int("height", s.Height).
		Dur("attach_delay", cfg.AttachDelay).
		Msg("Scene composed")
	return s, nil
}

func stylesFromConfig(cfg *config.Config) Styles {
	return Styles{
		Arc: ArcStyle{
			Color:              utils.MustParseColor(cfg.Arcs.Color),
			Stroke:             cfg.Arcs.Stroke,
			DashLength:         cfg.Arcs.DashLength,
			DashGap:            cfg.Arcs.DashGap,
			DashAnimateTime:    cfg.Arcs.DashAnimateTime,
			TransitionDuration: cfg.Arcs.TransitionDuration,
			DashInitialGapStep: cfg.Arcs.DashInitialGapStep,
			AltitudeAutoScale:  cfg.Arcs.AltitudeAutoScale,
		},
		Point: PointStyle{
			Color:              utils.MustParseColor(cfg.Points.Color),
			Altitude:           cfg.Points.Altitude,
			Radius:             cfg.Points.Radius,
			Merge:              cfg.Points.Merge,
			TransitionDuration: cfg.Points.TransitionDuration,
		},
		Ring: RingStyle{
			Color:            utils.MustParseColor(cfg.Rings.Color),
			MaxRadius:        cfg.Rings.MaxRadius,
			PropagationSpeed: cfg.Rings.PropagationSpeed,
			RepeatPeriod:     cfg.Rings.RepeatPeriod,
		},
	}
}

// lightingFromConfig builds the camera-attached lights; positions are taken
// as view-space offsets.
func lightingFromConfig(cfg *config.Config) *Lighting {
	vec := func(v config.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }
	l := cfg.Lights
	return &Lighting{
		Directional: []DirectionalLight{
			{Color: utils.MustParseColor(l.Primary.Color), Intensity: l.Primary.Intensity, Position: vec(l.Primary.Position)},
			{Color: utils.MustParseColor(l.Secondary.Color), Intensity: l.Secondary.Intensity, Position: vec(l.Secondary.Position)},
		},
		Points: []PointLight{
			{Color: utils.MustParseColor(l.Point.Color), Intensity: l.Point.Intensity, Position: vec(l.Point.Position)},
		},
		Ambient: AmbientLight{Color: utils.MustParseColor(l.Ambient.Color), Intensity: l.Ambient.Intensity},
	}
}

// Resize matches the camera and surface to a new drawable size. Zero or
// negative sizes are ignored and false is returned.
func (s *Scene) Resize(w, h int) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	s.Camera.Aspect = float64(w) / float64(h)
	s.Camera.UpdateProjection()
	s.Camera.Width, s.Camera.Height = w, h
	s.Width, s.Height = w, h
	return true
}

// Update advances the camera by delta seconds.
func (s *Scene) Update(delta float64) {
	s.Controls.Update(delta)
}

// attachOverlays runs on the timer goroutine. Close may already have run by
// the time it fires, in which case the scene stays bare.
func (s *Scene) attachOverlays() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.Globe.SetOverlays(s.Sample, s.Styles)
	close(s.attached)
}

// Attached is closed once the overlays have been attached. It stays open if
// the scene is closed first.
func (s *Scene) Attached() <-chan struct{} { return s.attached }

// Built is closed once the land layer build has finished or been abandoned.
func (s *Scene) Built() <-chan struct{} { return s.built }

// Close cancels a pending overlay attachment and the land layer build, and
// stops audio. It is safe to call more than once.
func (s *Scene) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.attach.Stop() {
		log.Debug().Msg("Pending overlay attachment cancelled")
	}
	s.cancel()
	<-s.built
	if s.Audio != nil {
		s.Audio.Shutdown()
	}
}
