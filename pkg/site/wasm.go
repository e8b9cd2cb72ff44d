package site

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	WasmName     = "globe.wasm"
	WasmExecName = "wasm_exec.js"
)

// Toolchain compiles the viewer for the browser.
type Toolchain interface {
	// BuildWasm compiles pkg with GOOS=js GOARCH=wasm into out.
	BuildWasm(ctx context.Context, pkg, out string) error
	// WasmExec locates the wasm_exec.js that matches the compiler.
	WasmExec(ctx context.Context) (string, error)
}

// GoToolchain runs the go command.
type GoToolchain struct {
	Go  string // binary, "go" from PATH when empty
	Dir string // working directory package paths are resolved against
}

func (t GoToolchain) command(ctx context.Context, args ...string) *exec.Cmd {
	bin := t.Go
	if bin == "" {
		bin = "go"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = t.Dir
	return cmd
}

func (t GoToolchain) BuildWasm(ctx context.Context, pkg, out string) error {
	abs, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	cmd := t.command(ctx, "build", "-trimpath", "-ldflags=-s -w", "-o", abs, pkg)
	cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm", "CGO_ENABLED=0")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build %s: %w: %s", pkg, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (t GoToolchain) WasmExec(ctx context.Context) (string, error) {
	out, err := t.command(ctx, "env", "GOROOT").Output()
	if err != nil {
		return "", fmt.Errorf("go env GOROOT: %w", err)
	}
	root := strings.TrimSpace(string(out))
	// lib/wasm since Go 1.24, misc/wasm before
	for _, rel := range []string{"lib/wasm", "misc/wasm"} {
		path := filepath.Join(root, filepath.FromSlash(rel), WasmExecName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s not found under %s: %w", WasmExecName, root, os.ErrNotExist)
}
