// Package config handles scene configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sudorandom/globe-arcs/pkg/utils"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	// GlobeRadius is the size of the globe in world units; camera distances
	// are measured against it.
	GlobeRadius = 100.0
	// MaxHexResolution bounds globe.hex_resolution.
	MaxHexResolution = 5
)

// Config is the root of the scene configuration file. Every field has a
// built-in default; a YAML file only needs to name what it changes.
type Config struct {
	Datasets Datasets `yaml:"datasets"`
	Surface  Surface  `yaml:"surface"`
	Camera   Camera   `yaml:"camera"`
	Controls Controls `yaml:"controls"`
	Lights   Lights   `yaml:"lights"`
	Fog      Fog      `yaml:"fog"`
	Material Material `yaml:"material"`
	Globe    Globe    `yaml:"globe"`
	Arcs     Arcs     `yaml:"arcs"`
	Points   Points   `yaml:"points"`
	Rings    Rings    `yaml:"rings"`

	// ArcCount is the number of random routes generated at startup.
	ArcCount int `yaml:"arc_count"`
	// AttachDelay postpones arcs, points and rings until the base globe is on screen.
	AttachDelay time.Duration `yaml:"attach_delay"`
}

// Datasets overrides the embedded data files.
type Datasets struct {
	Polygons string `yaml:"polygons,omitempty"`
	Places   string `yaml:"places,omitempty"`
}

// Surface is the initial render surface size in pixels.
type Surface struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type Camera struct {
	FOV      float64 `yaml:"fov"`
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
	Position Vec     `yaml:"position"`
}

type Controls struct {
	Enabled         bool    `yaml:"enabled"`
	AutoRotate      bool    `yaml:"auto_rotate"`
	AutoRotateSpeed float64 `yaml:"auto_rotate_speed"`
	MinDistance     float64 `yaml:"min_distance"`
	MaxDistance     float64 `yaml:"max_distance"`
}

type Light struct {
	Color     string  `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
	Position  Vec     `yaml:"position"`
}

type Lights struct {
	Primary   Light `yaml:"primary"`
	Secondary Light `yaml:"secondary"`
	Point     Light `yaml:"point"`
	Ambient   Light `yaml:"ambient"`
}

type Fog struct {
	Color string  `yaml:"color"`
	Near  float64 `yaml:"near"`
	Far   float64 `yaml:"far"`
}

type Material struct {
	Color             string  `yaml:"color"`
	Emissive          string  `yaml:"emissive"`
	EmissiveIntensity float64 `yaml:"emissive_intensity"`
	Shininess         float64 `yaml:"shininess"`
}

type Globe struct {
	WaitForGlobeReady  bool          `yaml:"wait_for_globe_ready"`
	AnimateIn          bool          `yaml:"animate_in"`
	AnimateInDuration  time.Duration `yaml:"animate_in_duration"`
	HexColor           string        `yaml:"hex_color"`
	HexResolution      int           `yaml:"hex_resolution"`
	HexMargin          float64       `yaml:"hex_margin"`
	ShowAtmosphere     bool          `yaml:"show_atmosphere"`
	AtmosphereColor    string        `yaml:"atmosphere_color"`
	AtmosphereAltitude float64       `yaml:"atmosphere_altitude"`
}

type Arcs struct {
	Color              string        `yaml:"color"`
	Stroke             float64       `yaml:"stroke"`
	DashLength         float64       `yaml:"dash_length"`
	DashGap            float64       `yaml:"dash_gap"`
	DashAnimateTime    time.Duration `yaml:"dash_animate_time"`
	TransitionDuration time.Duration `yaml:"transition_duration"`
	// DashInitialGapStep is multiplied by the arc order to stagger dashes.
	DashInitialGapStep float64 `yaml:"dash_initial_gap_step"`
	AltitudeAutoScale  float64 `yaml:"altitude_auto_scale"`
}

type Points struct {
	Color              string        `yaml:"color"`
	Merge              bool          `yaml:"merge"`
	Altitude           float64       `yaml:"altitude"`
	Radius             float64       `yaml:"radius"`
	TransitionDuration time.Duration `yaml:"transition_duration"`
}

type Rings struct {
	Color            string        `yaml:"color"`
	MaxRadius        float64       `yaml:"max_radius"`
	PropagationSpeed float64       `yaml:"propagation_speed"`
	RepeatPeriod     time.Duration `yaml:"repeat_period"`
}

// Default returns the stock scene: an indigo globe with magenta arcs.
func Default() *Config {
	return &Config{
		Surface: Surface{Width: 800, Height: 800},
		Camera: Camera{
			FOV:      50,
			Near:     0.1,
			Far:      2000,
			Position: Vec{0, 0, 320},
		},
		Controls: Controls{
			Enabled:         false,
			AutoRotate:      true,
			AutoRotateSpeed: 0.15,
			MinDistance:     150,
			MaxDistance:     800,
		},
		Lights: Lights{
			Primary:   Light{Color: "0xffffff", Intensity: 0.8, Position: Vec{-800, 2000, 400}},
			Secondary: Light{Color: "0x7982f6", Intensity: 1, Position: Vec{-200, 500, 200}},
			Point:     Light{Color: "0x8566cc", Intensity: 0.5, Position: Vec{-200, 500, 200}},
			Ambient:   Light{Color: "0xbbbbbb", Intensity: 0.3},
		},
		Fog: Fog{Color: "0x535ef3", Near: 400, Far: 2000},
		Material: Material{
			Color:             "0x3a228a",
			Emissive:          "0x220038",
			EmissiveIntensity: 0.1,
			Shininess:         0.7,
		},
		Globe: Globe{
			WaitForGlobeReady:  true,
			AnimateIn:          true,
			AnimateInDuration:  600 * time.Millisecond,
			HexColor:           "rgba(255,255,255, 1)",
			HexResolution:      3,
			HexMargin:          0.7,
			ShowAtmosphere:     true,
			AtmosphereColor:    "#3a228a",
			AtmosphereAltitude: 0.25,
		},
		Arcs: Arcs{
			Color:              "rgba(255, 3, 212, 0.85)",
			Stroke:             0.75,
			DashLength:         0.9,
			DashGap:            4,
			DashAnimateTime:    4500 * time.Millisecond,
			TransitionDuration: 4500 * time.Millisecond,
			DashInitialGapStep: 1,
			AltitudeAutoScale:  0.5,
		},
		Points: Points{
			Color:              "#30b0ff",
			Merge:              true,
			Altitude:           0.045,
			Radius:             0.05,
			TransitionDuration: 3500 * time.Millisecond,
		},
		Rings: Rings{
			Color:            "rgb(200, 200, 200)",
			MaxRadius:        3.25,
			PropagationSpeed: 0.5,
			RepeatPeriod:     2400 * time.Millisecond,
		},
		ArcCount:    5,
		AttachDelay: 1500 * time.Millisecond,
	}
}

// Load reads a YAML file on top of Default. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first out-of-range or unparsable value.
func (c *Config) Validate() error {
	colors := map[string]string{
		"lights.primary.color":   c.Lights.Primary.Color,
		"lights.secondary.color": c.Lights.Secondary.Color,
		"lights.point.color":     c.Lights.Point.Color,
		"lights.ambient.color":   c.Lights.Ambient.Color,
		"fog.color":              c.Fog.Color,
		"material.color":         c.Material.Color,
		"material.emissive":      c.Material.Emissive,
		"globe.hex_color":        c.Globe.HexColor,
		"globe.atmosphere_color": c.Globe.AtmosphereColor,
		"arcs.color":             c.Arcs.Color,
		"points.color":           c.Points.Color,
		"rings.color":            c.Rings.Color,
	}
	for field, v := range colors {
		if _, err := utils.ParseColor(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
		}
	}

	cam := c.Camera.Position
	camDist := math.Sqrt(cam.X*cam.X + cam.Y*cam.Y + cam.Z*cam.Z)
	lights := []Light{c.Lights.Primary, c.Lights.Secondary, c.Lights.Point, c.Lights.Ambient}
	for _, l := range lights {
		if l.Intensity < 0 || math.IsNaN(l.Intensity) {
			return fmt.Errorf("%w: light intensity must not be negative", ErrInvalidConfig)
		}
	}

	switch {
	case c.ArcCount < 1:
		return fmt.Errorf("%w: arc_count must be at least 1", ErrInvalidConfig)
	case c.Surface.Width <= 0 || c.Surface.Height <= 0:
		return fmt.Errorf("%w: surface must be positive", ErrInvalidConfig)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("%w: camera.fov must be in (0, 180)", ErrInvalidConfig)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera needs 0 < near < far", ErrInvalidConfig)
	case !(camDist > GlobeRadius):
		return fmt.Errorf("%w: camera.position must be outside the globe", ErrInvalidConfig)
	case !(c.Controls.MinDistance > GlobeRadius):
		return fmt.Errorf("%w: controls.min_distance must exceed the globe radius (%g)", ErrInvalidConfig, GlobeRadius)
	case c.Controls.MaxDistance < c.Controls.MinDistance:
		return fmt.Errorf("%w: controls.max_distance must not be below min_distance", ErrInvalidConfig)
	case c.Globe.HexResolution < 0 || c.Globe.HexResolution > MaxHexResolution:
		return fmt.Errorf("%w: globe.hex_resolution must be in [0, %d]", ErrInvalidConfig, MaxHexResolution)
	case c.Globe.HexMargin < 0 || c.Globe.HexMargin >= 1:
		return fmt.Errorf("%w: globe.hex_margin must be in [0, 1)", ErrInvalidConfig)
	case c.Globe.AnimateInDuration < 0 || c.Globe.AtmosphereAltitude < 0:
		return fmt.Errorf("%w: globe animation and atmosphere must not be negative", ErrInvalidConfig)
	case c.Arcs.Stroke < 0 || c.Arcs.AltitudeAutoScale < 0:
		return fmt.Errorf("%w: arcs stroke and altitude scale must not be negative", ErrInvalidConfig)
	case c.Points.Radius < 0 || c.Points.Altitude < 0:
		return fmt.Errorf("%w: points radius and altitude must not be negative", ErrInvalidConfig)
	case c.Arcs.DashLength <= 0 || c.Arcs.DashGap < 0:
		return fmt.Errorf("%w: arcs dash pattern must be positive", ErrInvalidConfig)
	case c.Arcs.DashAnimateTime <= 0:
		return fmt.Errorf("%w: arcs.dash_animate_time must be positive", ErrInvalidConfig)
	case c.Rings.MaxRadius <= 0 || c.Rings.PropagationSpeed <= 0 || c.Rings.RepeatPeriod <= 0:
		return fmt.Errorf("%w: rings parameters must be positive", ErrInvalidConfig)
	case c.Rings.MaxRadius > 180:
		return fmt.Errorf("%w: rings.max_radius is in degrees of arc, at most 180", ErrInvalidConfig)
	case c.Fog.Far <= c.Fog.Near:
		return fmt.Errorf("%w: fog.far must exceed fog.near", ErrInvalidConfig)
	case c.AttachDelay < 0:
		return fmt.Errorf("%w: attach_delay must not be negative", ErrInvalidConfig)
	}
	return nil
}
