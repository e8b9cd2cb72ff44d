package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/sudorandom/globe-arcs/pkg/logger"
	"github.com/sudorandom/globe-arcs/pkg/site"
)

type CLI struct {
	logger.Logger `embed:"" prefix:"log-"`

	Src      string `help:"Directory with scripts, stylesheets and the page template." default:"web/src" type:"existingdir"`
	Public   string `help:"Static assets copied verbatim." default:"web/public" type:"path"`
	Out      string `help:"Publish directory; cleaned before the build." default:"docs" type:"path" short:"o"`
	Template string `help:"Page template, relative to --src." default:"index.html.tpl"`
	Favicon  string `help:"Favicon inlined into the page." default:"web/src/favicon.svg" type:"path"`
	Title    string `help:"Page title." default:"Globe"`
	Wasm     string `help:"Go package compiled to globe.wasm; empty skips it." default:"./cmd/globe-viewer"`
	Go       string `help:"Go binary used to compile the viewer." default:"go"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("globe-site"),
		kong.Description("Build the static page that hosts the globe."),
		kong.UsageOnError(),
	)
	cli.Logger.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err := site.Build(ctx, site.Options{
		SrcDir:    cli.Src,
		PublicDir: cli.Public,
		OutDir:    cli.Out,
		Template:  cli.Template,
		Favicon:   cli.Favicon,
		Title:     cli.Title,

		WasmPackage: cli.Wasm,
		Toolchain:   site.GoToolchain{Go: cli.Go},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Site build failed")
	}
}
