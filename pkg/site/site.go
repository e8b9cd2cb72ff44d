// Package site builds the static web page that hosts the globe.
package site

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/sudorandom/globe-arcs/pkg/utils"
)

const (
	BundleName = "main.bundle.js"
	StyleName  = "main.css"
	PageName   = "index.html"
	MountID    = "wrapper"
)

var (
	ErrNoSources    = errors.New("no source files")
	ErrNoMount      = errors.New("page template has no mount element")
	ErrUnsafeOutput = errors.New("refusing to clean output directory")
	ErrMissingAsset = errors.New("page references a file the build did not produce")
)

// Options locate the inputs and output of a build.
type Options struct {
	SrcDir    string // scripts, stylesheets and the page template
	PublicDir string // copied verbatim
	OutDir    string // cleaned before every build
	Template  string // file name under SrcDir
	Favicon   string // path, inlined as a data URI
	Title     string

	// WasmPackage is the Go package compiled to WasmName; empty skips the
	// step. Toolchain defaults to GoToolchain.
	WasmPackage string
	Toolchain   Toolchain
}

func DefaultOptions() Options {
	return Options{
		SrcDir:    "web/src",
		PublicDir: "web/public",
		OutDir:    "docs",
		Template:  "index.html.tpl",
		Favicon:   "web/src/favicon.svg",
		Title:     "Globe",

		WasmPackage: "./cmd/globe-viewer",
	}
}

// PageData is what the page template sees.
type PageData struct {
	Title      string
	Favicon    string
	Script     string
	Stylesheet string
	MountID    string
}

// Result lists what a build wrote.
type Result struct {
	Files  []string
	Copied int
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}

// Build minifies the scripts and stylesheets, renders the page, compiles the
// viewer and copies the public assets into a freshly cleaned OutDir. It fails
// if the page or the bundle points at a file missing from OutDir.
func Build(ctx context.Context, opts Options) (*Result, error) {
	m := newMinifier()

	script, err := bundle(m, opts.SrcDir, ".js", "text/javascript", ";\n")
	if err != nil {
		return nil, fmt.Errorf("bundle scripts: %w", err)
	}
	style, err := bundle(m, opts.SrcDir, ".css", "text/css", "\n")
	if err != nil {
		return nil, fmt.Errorf("bundle styles: %w", err)
	}
	favicon, err := dataURI(m, opts.Favicon)
	if err != nil {
		return nil, fmt.Errorf("inline favicon: %w", err)
	}
	page, err := renderPage(m, filepath.Join(opts.SrcDir, opts.Template), PageData{
		Title:      opts.Title,
		Favicon:    favicon,
		Script:     BundleName,
		Stylesheet: StyleName,
		MountID:    MountID,
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	if err := cleanDir(opts.OutDir, opts.SrcDir, opts.PublicDir); err != nil {
		return nil, err
	}

	res := &Result{}
	if opts.PublicDir != "" {
		n, err := utils.CopyDir(opts.PublicDir, opts.OutDir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("dir", opts.PublicDir).Msg("No public directory, skipping copy")
		case err != nil:
			return nil, fmt.Errorf("copy public: %w", err)
		}
		res.Copied = n
	}

	if opts.WasmPackage != "" {
		files, err := buildWasm(ctx, opts)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, files...)
	}

	outputs := []struct {
		name, body string
	}{
		{BundleName, script},
		{StyleName, style},
		{PageName, page},
	}
	for _, o := range outputs {
		path := filepath.Join(opts.OutDir, o.name)
		if err := utils.WriteFileAtomic(path, strings.NewReader(o.body), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", o.name, err)
		}
		res.Files = append(res.Files, path)
		log.Debug().Str("file", path).Int("bytes", len(o.body)).Msg("Wrote")
	}

	if err := checkAssets(opts.OutDir, page, script); err != nil {
		return nil, err
	}

	log.Info().
		Str("out", opts.OutDir).
		Int("files", len(res.Files)).
		Int("copied", res.Copied).
		Msg("Site built")
	return res, nil
}

func buildWasm(ctx context.Context, opts Options) ([]string, error) {
	tc := opts.Toolchain
	if tc == nil {
		tc = GoToolchain{}
	}
	wasm := filepath.Join(opts.OutDir, WasmName)
	log.Info().Str("package", opts.WasmPackage).Msg("Compiling viewer for the browser")
	if err := tc.BuildWasm(ctx, opts.WasmPackage, wasm); err != nil {
		return nil, fmt.Errorf("compile viewer: %w", err)
	}
	src, err := tc.WasmExec(ctx)
	if err != nil {
		return nil, err
	}
	exec := filepath.Join(opts.OutDir, WasmExecName)
	if err := utils.CopyFile(src, exec); err != nil {
		return nil, fmt.Errorf("copy %s: %w", WasmExecName, err)
	}
	return []string{wasm, exec}, nil
}

var (
	pageRef   = regexp.MustCompile(`(?:src|href)=["']?([^"'\s>]+)`)
	scriptRef = regexp.MustCompile(`["'\x60]([\w./-]+\.(?:js|wasm|css|json|png|svg|ico|mp3))["'\x60]`)
)

// assetRefs lists the relative file references of a page and its script.
func assetRefs(page, script string) []string {
	var refs []string
	for _, m := range pageRef.FindAllStringSubmatch(page, -1) {
		refs = append(refs, m[1])
	}
	for _, m := range scriptRef.FindAllStringSubmatch(script, -1) {
		refs = append(refs, m[1])
	}
	out := refs[:0]
	for _, r := range refs {
		if i := strings.IndexAny(r, "?#"); i >= 0 {
			r = r[:i]
		}
		switch {
		case r == "", strings.Contains(r, ":"), strings.HasPrefix(r, "//"):
			continue
		}
		out = append(out, r)
	}
	return out
}

func checkAssets(dir, page, script string) error {
	for _, ref := range assetRefs(page, script) {
		path := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingAsset, ref)
		}
	}
	return nil
}

// bundle minifies every file in dir with the given extension, in name order,
// and joins them with sep.
func bundle(m *minify.M, dir, ext, mediatype, sep string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s/*%s", ErrNoSources, dir, ext)
	}
	sort.Strings(matches)

	parts := make([]string, 0, len(matches))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		out, err := m.String(mediatype, string(raw))
		if err != nil {
			return "", fmt.Errorf("minify %s: %w", filepath.Base(path), err)
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, sep), nil
}

// dataURI inlines a file; SVGs are minified first. An empty path yields "".
func dataURI(m *minify.M, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(path))
	mediatype := mime.TypeByExtension(ext)
	switch ext {
	case ".svg":
		mediatype = "image/svg+xml"
		minified, err := m.Bytes(mediatype, raw)
		if err != nil {
			return "", fmt.Errorf("minify %s: %w", filepath.Base(path), err)
		}
		raw = minified
	case ".ico":
		mediatype = "image/x-icon"
	}
	if mediatype == "" {
		mediatype = "application/octet-stream"
	}
	if i := strings.IndexByte(mediatype, ';'); i >= 0 {
		mediatype = mediatype[:i]
	}
	return "data:" + mediatype + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func renderPage(m *minify.M, path string, data PageData) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(filepath.Base(path)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	if !strings.Contains(buf.String(), `id="`+data.MountID+`"`) {
		return "", fmt.Errorf("%w: want id=%q", ErrNoMount, data.MountID)
	}
	return m.String("text/html", buf.String())
}

// cleanDir empties out, refusing paths that would take the inputs with it.
func cleanDir(out string, inputs ...string) error {
	abs, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	if out == "" || abs == filepath.Dir(abs) {
		return fmt.Errorf("%w: %q", ErrUnsafeOutput, out)
	}
	if wd, err := os.Getwd(); err == nil && abs == wd {
		return fmt.Errorf("%w: %q is the working directory", ErrUnsafeOutput, out)
	}
	for _, in := range inputs {
		if in == "" {
			continue
		}
		inAbs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		if inAbs == abs || strings.HasPrefix(inAbs, abs+string(filepath.Separator)) {
			return fmt.Errorf("%w: %q contains %q", ErrUnsafeOutput, out, in)
		}
	}
	if err := os.RemoveAll(abs); err != nil {
		return err
	}
	return os.MkdirAll(abs, 0o755)
}
