package main

import (
	"math/rand"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/sudorandom/globe-arcs/pkg/config"
	"github.com/sudorandom/globe-arcs/pkg/globe"
	"github.com/sudorandom/globe-arcs/pkg/logger"
)

type CLI struct {
	logger.Logger `embed:"" prefix:"log-"`

	Config      string `help:"Scene configuration file (YAML)." type:"existingfile" short:"c" env:"GLOBE_CONFIG"`
	Width       int    `help:"Initial surface width; overrides the config." env:"GLOBE_WIDTH"`
	Height      int    `help:"Initial surface height; overrides the config." env:"GLOBE_HEIGHT"`
	TPS         int    `help:"Ticks per second (engine updates)." default:"60"`
	Seed        int64  `help:"Random seed for the routes; 0 picks one from the clock."`
	Headless    bool   `help:"Run without configuring a local window (for Xvfb rendering)."`
	Interactive bool   `help:"Let the mouse orbit and zoom the camera."`
	HUD         bool   `help:"Show the route list overlay." name:"hud"`

	CaptureDir   string `help:"Write captured frames to this directory." type:"path"`
	CaptureEvery int    `help:"Capture every Nth frame." default:"30"`
	AudioDir     string `help:"Play random MP3s from this directory." type:"existingdir" env:"GLOBE_AUDIO_DIR"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("globe-viewer"),
		kong.Description("Rotating globe with animated routes between world cities."),
		kong.UsageOnError(),
	)
	cli.Logger.Setup()

	if err := run(&cli); err != nil {
		log.Fatal().Err(err).Msg("Viewer stopped")
	}
}

func run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.Width > 0 {
		cfg.Surface.Width = cli.Width
	}
	if cli.Height > 0 {
		cfg.Surface.Height = cli.Height
	}
	if cli.Interactive {
		cfg.Controls.Enabled = true
	}

	datasets, err := globe.LoadDatasets(cfg.Datasets.Polygons, cfg.Datasets.Places)
	if err != nil {
		return err
	}

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Debug().Int64("seed", seed).Msg("Seeding routes")

	scene, err := globe.NewScene(cfg, datasets, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	engine := globe.NewEngine(scene)
	defer engine.Close()

	if cli.CaptureDir != "" {
		engine.Capture = &globe.FrameCapture{Dir: cli.CaptureDir, Every: cli.CaptureEvery}
	}
	if cli.HUD {
		engine.HUD = globe.NewHUD()
	}
	if cli.AudioDir != "" {
		player := globe.NewAudioPlayer(cli.AudioDir, nil)
		scene.Audio = player
		player.Start()
	}

	ebiten.SetTPS(cli.TPS)
	if cli.Headless {
		log.Info().Msg("Running headless (rendering active)")
	} else {
		ebiten.SetWindowSize(cfg.Surface.Width, cfg.Surface.Height)
		ebiten.SetWindowTitle("Globe")
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	return ebiten.RunGame(engine)
}
