package globe

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/sudorandom/globe-arcs/pkg/utils"
)

// FrameCapture writes every Every-th frame to Dir as a PNG.
type FrameCapture struct {
	Dir   string
	Every int

	frame int
}

func captureName(t time.Time, frame int) string {
	return fmt.Sprintf("globe-%s-%06d.png", t.Format("20060102-150405"), frame)
}

// Due counts a frame and reports whether it should be captured.
func (c *FrameCapture) Due() bool {
	if c == nil || c.Dir == "" || c.Every <= 0 {
		return false
	}
	c.frame++
	return c.frame%c.Every == 0
}

// Capture reads the screen back and encodes it on a separate goroutine.
func (c *FrameCapture) Capture(screen *ebiten.Image, now time.Time) {
	b := screen.Bounds()
	rgba := image.NewRGBA(b)
	screen.ReadPixels(rgba.Pix)
	path := filepath.Join(c.Dir, captureName(now, c.frame))

	go func() {
		if err := writePNG(path, rgba); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Frame capture failed")
			return
		}
		log.Info().Str("path", path).Msg("Captured frame")
	}()
}

func writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return utils.WriteFileAtomic(path, &buf, 0o644)
}
