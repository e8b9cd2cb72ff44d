package globe

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFadeVolume(t *testing.T) {
	tests := []struct {
		name                       string
		length, elapsed, sinceStop time.Duration
		want                       float64
	}{
		{"start of track", time.Minute, 0, -1, 1},
		{"middle of track", time.Minute, 30 * time.Second, -1, 1},
		{"fading at the end", time.Minute, 57500 * time.Millisecond, -1, 0.5},
		{"past the end", time.Minute, 2 * time.Minute, -1, 0},
		{"shutdown just began", time.Minute, 10 * time.Second, 0, 1},
		{"shutdown half way", time.Minute, 10 * time.Second, 2500 * time.Millisecond, 0.5},
		{"shutdown over", time.Minute, 10 * time.Second, 6 * time.Second, 0},
		{"end fade wins", time.Minute, 59 * time.Second, time.Second, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, fadeVolume(tt.length, tt.elapsed, tt.sinceStop), 1e-9)
		})
	}
}

func TestReadTrackInfoFallsBackToFileName(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Night Drive")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "Orbit - The Satellites.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really an mp3"), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	info := readTrackInfo(f, path, root)
	assert.Equal(t, TrackInfo{Song: "Orbit", Artist: "The Satellites", Album: "Night Drive"}, info)

	loose := filepath.Join(root, "Untitled.mp3")
	require.NoError(t, os.WriteFile(loose, nil, 0o644))
	g, err := os.Open(loose)
	require.NoError(t, err)
	defer g.Close()
	assert.Equal(t, TrackInfo{Song: "Untitled"}, readTrackInfo(g, loose, root))
}

func TestFindTracks(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.mp3", "b.MP3", "notes.txt", filepath.Join("sub", "c.mp3")} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	tracks, err := findTracks(root)
	require.NoError(t, err)
	assert.Len(t, tracks, 3)

	_, err = findTracks(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestAudioPlayerShutdownWithoutStart(t *testing.T) {
	p := NewAudioPlayer(t.TempDir(), nil)
	_, ok := p.Current()
	assert.False(t, ok)

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		p.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown blocked")
	}
}
