package globe

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog/log"
)

const (
	arcSegments     = 64
	ringSegments    = 48
	ringAltitude    = 0.002
	bodyTextureSize = 512
	minPointWidth   = 1.5
)

// State is the lifecycle state of the render loop.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	}
	return "unknown"
}

// Engine drives a Scene from the ebiten game loop.
type Engine struct {
	// Optional; nil disables them.
	Capture *FrameCapture
	HUD     *HUD
	OnFrame func(screen *ebiten.Image)

	scene  *Scene
	state  State
	routes []string

	dotImage  *ebiten.Image
	glowImage *ebiten.Image
	bodyImage *ebiten.Image
	bodyDist  float64

	dragging     bool
	dragX, dragY int
	dotOp        ebiten.DrawImageOptions
}

func NewEngine(scene *Scene) *Engine {
	return &Engine{
		scene:  scene,
		routes: RouteLabels(scene.Datasets, scene.Sample),
	}
}

func (e *Engine) Scene() *Scene { return e.scene }
func (e *Engine) State() State { return e.state }

// Close tears the scene down.
func (e *Engine) Close() { e.scene.Close() }

func (e *Engine) Update() error {
	if e.state == StateIdle {
		e.state = StateRunning
		log.Debug().Stringer("state", e.state).Msg("Render loop started")
	}
	delta := e.scene.Clock.Delta()
	if e.scene.Controls.Enabled {
		e.handleInput()
	}
	e.scene.Update(delta)
	return nil
}

// handleInput maps a left-button drag to orbiting and the wheel to zoom.
func (e *Engine) handleInput() {
	c := e.scene.Controls
	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		e.dragging, e.dragX, e.dragY = true, x, y
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		e.dragging = false
	case e.dragging:
		h := float64(max(e.scene.Height, 1))
		c.Rotate(2*math.Pi*float64(x-e.dragX)/h, 2*math.Pi*float64(y-e.dragY)/h)
		e.dragX, e.dragY = x, y
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		c.Dolly(math.Pow(0.95, wy))
	}
}

// Layout resizes the scene to the window on every call.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	e.scene.Resize(outsideWidth, outsideHeight)
	return e.scene.Width, e.scene.Height
}

func (e *Engine) Draw(screen *ebiten.Image) {
	s := e.scene
	now := s.Clock.Now()
	if s.Globe.Visible() {
		e.drawGlobe(screen, now)
	}

	if e.HUD != nil {
		var track *TrackInfo
		if s.Audio != nil {
			if t, ok := s.Audio.Current(); ok {
				track = &t
			}
		}
		e.HUD.Draw(screen, e.routes, track)
	}
	if e.Capture.Due() {
		e.Capture.Capture(screen, time.Now())
	}
	if e.OnFrame != nil {
		e.OnFrame(screen)
	}
}

func (e *Engine) drawGlobe(screen *ebiten.Image, now time.Time) {
	s := e.scene
	cam := s.Camera
	scale := s.Globe.Scale(now)
	if scale <= 0 {
		return
	}
	cx, cy, dist, ok := cam.Project(Vec3{})
	if !ok {
		return
	}
	radius := GlobeRadius * scale
	rPx := cam.ProjectedRadius(radius)
	opts := s.Globe.Options()

	if opts.ShowAtmosphere {
		e.drawAtmosphere(screen, cx, cy, rPx, opts)
	}
	e.drawBody(screen, cx, cy, rPx, dist)
	e.drawLand(screen, scale, opts.HexColor)

	ov, ok := s.Globe.Overlays()
	if !ok {
		return
	}
	elapsed := now.Sub(ov.AttachedAt).Seconds()
	e.drawArcs(screen, ov, elapsed, scale)
	e.drawPoints(screen, ov, elapsed, scale)
	e.drawRings(screen, ov, elapsed, scale)
}

func (e *Engine) drawAtmosphere(screen *ebiten.Image, cx, cy, rPx float64, opts GlobeOptions) {
	inner := 1 / (1 + opts.AtmosphereAltitude)
	if e.glowImage == nil {
		e.glowImage = newTexture(glowTextureSize, glowPixels(glowTextureSize, inner))
	}
	outer := rPx / inner
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-glowTextureSize/2, -glowTextureSize/2)
	op.GeoM.Scale(2*outer/glowTextureSize, 2*outer/glowTextureSize)
	op.GeoM.Translate(cx, cy)
	op.ColorScale.ScaleWithColor(opts.AtmosphereColor)
	op.ColorScale.ScaleAlpha(0.6)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(e.glowImage, op)
}

// drawBody draws the lit sphere. The shading only depends on the camera
// distance, since the lights travel with the camera.
func (e *Engine) drawBody(screen *ebiten.Image, cx, cy, rPx, dist float64) {
	s := e.scene
	if e.bodyImage == nil || math.Abs(e.bodyDist-dist) >= 1 {
		img := s.Lighting.ShadeSphere(s.Material, s.Fog, bodyTextureSize, dist)
		if e.bodyImage != nil {
			e.bodyImage.Deallocate()
		}
		e.bodyImage = ebiten.NewImageFromImage(img)
		e.bodyDist = dist
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-bodyTextureSize/2, -bodyTextureSize/2)
	op.GeoM.Scale(2*rPx/bodyTextureSize, 2*rPx/bodyTextureSize)
	op.GeoM.Translate(cx, cy)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(e.bodyImage, op)
}

func (e *Engine) drawLand(screen *ebiten.Image, scale float64, c color.NRGBA) {
	s := e.scene
	layer := s.Globe.HexLayer()
	if layer == nil {
		return
	}
	if e.dotImage == nil {
		e.dotImage = newTexture(dotTextureSize, dotPixels(dotTextureSize))
	}
	cam := s.Camera
	for _, d := range layer.Dots {
		p := d.Pos.Mul(scale)
		if !cam.FrontFacing(p) {
			continue
		}
		x, y, depth, ok := cam.Project(p)
		if !ok {
			continue
		}
		r := d.Radius * scale * cam.PixelsPerUnit(depth)
		e.drawDot(screen, x, y, r, s.Fog.Apply(c, depth))
	}
}

func (e *Engine) drawDot(screen *ebiten.Image, x, y, r float64, c color.Color) {
	op := &e.dotOp
	op.GeoM.Reset()
	op.GeoM.Translate(-dotTextureSize/2, -dotTextureSize/2)
	op.GeoM.Scale(2*r/dotTextureSize, 2*r/dotTextureSize)
	op.GeoM.Translate(x, y)
	op.ColorScale.Reset()
	op.ColorScale.ScaleWithColor(c)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(e.dotImage, op)
}

// segment draws a line between two world points unless the globe hides it.
func (e *Engine) segment(screen *ebiten.Image, a, b Vec3, radius, width float64, c color.NRGBA) {
	cam := e.scene.Camera
	if cam.Hidden(a, radius) || cam.Hidden(b, radius) {
		return
	}
	x0, y0, d0, ok0 := cam.Project(a)
	x1, y1, d1, ok1 := cam.Project(b)
	if !ok0 || !ok1 {
		return
	}
	depth := (d0 + d1) / 2
	w := max(width*cam.PixelsPerUnit(depth), 1)
	vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), float32(w), e.scene.Fog.Apply(c, depth), true)
}

func (e *Engine) drawArcs(screen *ebiten.Image, ov *Overlays, elapsed, scale float64) {
	st := ov.Styles.Arc
	growth := st.Growth(elapsed)
	radius := GlobeRadius * scale
	for _, path := range ov.Paths {
		pts := path.Samples(arcSegments, growth)
		for i := 0; i < arcSegments; i++ {
			mid := (float64(i) + 0.5) / arcSegments
			if !st.DashVisible(path.Arc.Order, elapsed, mid) {
				continue
			}
			e.segment(screen, pts[i].Mul(scale), pts[i+1].Mul(scale), radius, st.Stroke, st.Color)
		}
	}
}

// drawPoints draws each marker as a short column rising from the surface.
func (e *Engine) drawPoints(screen *ebiten.Image, ov *Overlays, elapsed, scale float64) {
	st := ov.Styles.Point
	growth := st.Growth(elapsed)
	cam := e.scene.Camera
	for _, m := range st.Markers(ov.Sample.Points) {
		base := LatLngToWorld(m.Lat, m.Lng, 0).Mul(scale)
		if !cam.FrontFacing(base) {
			continue
		}
		top := LatLngToWorld(m.Lat, m.Lng, st.Altitude*growth).Mul(scale)
		x0, y0, d0, ok0 := cam.Project(base)
		x1, y1, _, ok1 := cam.Project(top)
		if !ok0 || !ok1 {
			continue
		}
		w := max(2*st.WorldRadius()*scale*cam.PixelsPerUnit(d0), minPointWidth)
		c := e.scene.Fog.Apply(st.Color, d0)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), float32(w), c, true)
		vector.DrawFilledCircle(screen, float32(x1), float32(y1), float32(w/2), c, true)
	}
}

func (e *Engine) drawRings(screen *ebiten.Image, ov *Overlays, elapsed, scale float64) {
	st := ov.Styles.Ring
	cam := e.scene.Camera
	radius := GlobeRadius * scale
	waves := st.Waves(elapsed)
	for _, r := range ov.Sample.Rings {
		center := GeoPoint{r.Lat, r.Lng}
		if !cam.FrontFacing(LatLngToWorld(r.Lat, r.Lng, 0).Mul(scale)) {
			continue
		}
		for _, w := range waves {
			pts := RingCircle(center, w.Radius, ringAltitude, ringSegments)
			c := st.ColorAt(w.Progress)
			for i := 0; i < ringSegments; i++ {
				e.segment(screen, pts[i].Mul(scale), pts[i+1].Mul(scale), radius, 0.3, c)
			}
		}
	}
}
