package site

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>{{.Title}}</title>
  <link rel="icon" href="{{.Favicon}}">
  <link rel="stylesheet" href="{{.Stylesheet}}">
</head>
<body>
  <div id="{{.MountID}}"></div>
  <script src="{{.Script}}"></script>
</body>
</html>
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func fixture(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	pub := filepath.Join(root, "public")

	writeFile(t, filepath.Join(src, "index.html.tpl"), testTemplate)
	writeFile(t, filepath.Join(src, "a.js"), "// first\nvar first = 1 + 2;\n")
	writeFile(t, filepath.Join(src, "b.js"), "function second ( ) {\n  return   first ;\n}\n")
	writeFile(t, filepath.Join(src, "base.css"), "body {\n  margin : 0px ;\n}\n")
	writeFile(t, filepath.Join(src, "icon.svg"), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8 8">  <circle cx="4" cy="4" r="4"/>  </svg>`)
	writeFile(t, filepath.Join(pub, "robots.txt"), "User-agent: *\n")
	writeFile(t, filepath.Join(pub, "img", "logo.png"), "\x89PNG fake")

	return Options{
		SrcDir:    src,
		PublicDir: pub,
		OutDir:    filepath.Join(root, "docs"),
		Template:  "index.html.tpl",
		Favicon:   filepath.Join(src, "icon.svg"),
		Title:     "Test Globe",
	}
}

// fakeToolchain writes placeholder artifacts instead of invoking go.
type fakeToolchain struct {
	pkgs     []string
	buildErr error
}

func (f *fakeToolchain) BuildWasm(_ context.Context, pkg, out string) error {
	f.pkgs = append(f.pkgs, pkg)
	if f.buildErr != nil {
		return f.buildErr
	}
	return os.WriteFile(out, []byte("\x00asm\x01\x00\x00\x00"), 0o644)
}

func (f *fakeToolchain) WasmExec(context.Context) (string, error) {
	path := filepath.Join(os.TempDir(), "globe-site-test-"+WasmExecName)
	return path, os.WriteFile(path, []byte("class Go {}\n"), 0o644)
}

func repoOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		SrcDir:      filepath.Join("..", "..", "web", "src"),
		PublicDir:   filepath.Join("..", "..", "web", "public"),
		OutDir:      filepath.Join(t.TempDir(), "docs"),
		Template:    "index.html.tpl",
		Favicon:     filepath.Join("..", "..", "web", "src", "favicon.svg"),
		Title:       "Globe",
		WasmPackage: "./cmd/globe-viewer",
		Toolchain:   &fakeToolchain{},
	}
}

func readOut(t *testing.T, opts Options, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(opts.OutDir, name))
	require.NoError(t, err)
	return string(b)
}

func TestBuild(t *testing.T) {
	opts := fixture(t)
	writeFile(t, filepath.Join(opts.OutDir, "stale.txt"), "old build")

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, res.Files, 3)
	assert.Equal(t, 2, res.Copied)

	js := readOut(t, opts, BundleName)
	assert.NotContains(t, js, "// first")
	assert.Less(t, strings.Index(js, "first"), strings.Index(js, "second"), "scripts are bundled in name order")

	css := readOut(t, opts, StyleName)
	assert.Equal(t, "body{margin:0}", css)

	page := readOut(t, opts, PageName)
	assert.Contains(t, page, "Test Globe")
	assert.Contains(t, page, "data:image/svg+xml;base64,")
	assert.Contains(t, page, BundleName)
	assert.Contains(t, page, StyleName)
	assert.Regexp(t, `<div id="?wrapper"?>`, page)
	assert.NotContains(t, page, "\n  ")

	assert.Equal(t, "User-agent: *\n", readOut(t, opts, "robots.txt"))
	assert.Equal(t, "\x89PNG fake", readOut(t, opts, filepath.Join("img", "logo.png")))

	_, err = os.Stat(filepath.Join(opts.OutDir, "stale.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist, "output directory is cleaned first")
}

func TestBuildWithoutPublicDir(t *testing.T) {
	opts := fixture(t)
	opts.PublicDir = filepath.Join(t.TempDir(), "missing")

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Copied)
}

func TestBuildErrors(t *testing.T) {
	t.Run("no scripts", func(t *testing.T) {
		opts := fixture(t)
		require.NoError(t, os.Remove(filepath.Join(opts.SrcDir, "a.js")))
		require.NoError(t, os.Remove(filepath.Join(opts.SrcDir, "b.js")))
		_, err := Build(context.Background(), opts)
		assert.ErrorIs(t, err, ErrNoSources)
	})

	t.Run("no mount element", func(t *testing.T) {
		opts := fixture(t)
		writeFile(t, filepath.Join(opts.SrcDir, opts.Template), "<html><body>{{.Title}}</body></html>")
		_, err := Build(context.Background(), opts)
		assert.ErrorIs(t, err, ErrNoMount)
	})

	t.Run("unknown template field", func(t *testing.T) {
		opts := fixture(t)
		writeFile(t, filepath.Join(opts.SrcDir, opts.Template), `<div id="wrapper">{{.Nope}}</div>`)
		_, err := Build(context.Background(), opts)
		assert.Error(t, err)
	})

	t.Run("output contains sources", func(t *testing.T) {
		opts := fixture(t)
		opts.OutDir = filepath.Dir(opts.SrcDir)
		_, err := Build(context.Background(), opts)
		assert.ErrorIs(t, err, ErrUnsafeOutput)
		_, statErr := os.Stat(opts.SrcDir)
		assert.NoError(t, statErr)
	})

	t.Run("missing favicon", func(t *testing.T) {
		opts := fixture(t)
		opts.Favicon = filepath.Join(opts.SrcDir, "nope.ico")
		_, err := Build(context.Background(), opts)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDataURI(t *testing.T) {
	m := newMinifier()
	dir := t.TempDir()

	uri, err := dataURI(m, "")
	require.NoError(t, err)
	assert.Empty(t, uri)

	ico := filepath.Join(dir, "favicon.ico")
	writeFile(t, ico, "abc")
	uri, err = dataURI(m, ico)
	require.NoError(t, err)
	assert.Equal(t, "data:image/x-icon;base64,YWJj", uri)
}

func TestBuildRepositoryWebSources(t *testing.T) {
	opts := repoOptions(t)
	tc := opts.Toolchain.(*fakeToolchain)

	res, err := Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"./cmd/globe-viewer"}, tc.pkgs)
	assert.Len(t, res.Files, 5)
	assert.Contains(t, readOut(t, opts, PageName), BundleName)
	assert.Equal(t, "\x00asm", readOut(t, opts, WasmName)[:4])
	assert.Equal(t, "class Go {}\n", readOut(t, opts, WasmExecName))
}

func TestBuildReferencedAssetsExist(t *testing.T) {
	opts := repoOptions(t)
	_, err := Build(context.Background(), opts)
	require.NoError(t, err)

	refs := assetRefs(readOut(t, opts, PageName), readOut(t, opts, BundleName))
	assert.Subset(t, refs, []string{BundleName, StyleName, WasmExecName, WasmName})
	for _, ref := range refs {
		assert.FileExists(t, filepath.Join(opts.OutDir, filepath.FromSlash(ref)), ref)
	}
}

func TestBuildMissingWasm(t *testing.T) {
	opts := repoOptions(t)
	opts.WasmPackage = ""
	_, err := Build(context.Background(), opts)
	assert.ErrorIs(t, err, ErrMissingAsset)

	opts = repoOptions(t)
	boom := errors.New("boom")
	opts.Toolchain = &fakeToolchain{buildErr: boom}
	_, err = Build(context.Background(), opts)
	assert.ErrorIs(t, err, boom)
}

func TestAssetRefs(t *testing.T) {
	page := `<link rel=icon href="data:image/svg+xml;base64,AAA"><link rel=stylesheet href=main.css>` +
		`<script src="main.bundle.js?v=2" defer></script><a href="https://example.com/x.js">x</a>`
	script := `s.src="wasm_exec.js";fetch('globe.wasm');var t="text/javascript"`
	assert.Equal(t, []string{"main.css", "main.bundle.js", "wasm_exec.js", "globe.wasm"}, assetRefs(page, script))
}

func TestGoToolchainBuildWasm(t *testing.T) {
	if testing.Short() {
		t.Skip("compiles a module")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go not installed")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/hello\n\ngo 1.21\n")
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n\nfunc main() { println(\"hello\") }\n")

	tc := GoToolchain{Dir: dir}
	out := filepath.Join(t.TempDir(), WasmName)
	require.NoError(t, tc.BuildWasm(context.Background(), ".", out))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "\x00asm", string(b[:4]))

	execJS, err := tc.WasmExec(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, execJS)
}
