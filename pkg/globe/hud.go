package globe

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/biter777/countries"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	hudBackground = color.RGBA{0, 0, 0, 100}
	hudBorder     = color.RGBA{36, 42, 53, 255}
)

// HUD lists the active routes and the playing track in a corner box.
type HUD struct {
	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource
}

func NewHUD() *HUD {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load HUD font")
		return nil
	}
	m, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load HUD font")
		return nil
	}
	return &HUD{fontSource: s, monoSource: m}
}

// PlaceLabel names the place at a coordinate as "City, Country".
func PlaceLabel(d *Datasets, p GeoPoint) string {
	if d != nil {
		if place, ok := d.PlaceAt(p.Lat, p.Lng); ok {
			if c := countries.ByName(place.CC); c != countries.Unknown {
				return fmt.Sprintf("%s, %s", place.Name, c.String())
			}
			return place.Name
		}
	}
	return fmt.Sprintf("%.2f, %.2f", p.Lat, p.Lng)
}

// RouteLabels describes every arc of the sample, in arc order.
func RouteLabels(d *Datasets, s Sample) []string {
	out := make([]string, len(s.Arcs))
	for i, a := range s.Arcs {
		out[i] = fmt.Sprintf("%s → %s", PlaceLabel(d, a.Start()), PlaceLabel(d, a.End()))
	}
	return out
}

func (h *HUD) Draw(screen *ebiten.Image, routes []string, track *TrackInfo) {
	if h == nil {
		return
	}
	w, hgt := screen.Bounds().Dx(), screen.Bounds().Dy()
	fontSize := max(12, float64(hgt)/60)
	face := &text.GoTextFace{Source: h.fontSource, Size: fontSize}
	titleFace := &text.GoTextFace{Source: h.fontSource, Size: fontSize * 0.8}
	lineH := fontSize * 1.5
	x := fontSize

	if len(routes) > 0 {
		boxW := 0.0
		for _, r := range routes {
			tw, _ := text.Measure(r, face, 0)
			boxW = max(boxW, tw)
		}
		boxW += 30
		boxH := lineH*float64(len(routes)) + fontSize*2
		y := float64(hgt) - boxH - fontSize
		drawBox(screen, x-10, y, boxW, boxH)

		op := &text.DrawOptions{}
		op.GeoM.Translate(x+5, y+5)
		op.ColorScale.Scale(1, 1, 1, 0.5)
		text.Draw(screen, "ROUTES", titleFace, op)

		for i, r := range routes {
			op := &text.DrawOptions{}
			op.GeoM.Translate(x, y+fontSize*1.5+float64(i)*lineH)
			op.ColorScale.Scale(1, 1, 1, 0.8)
			text.Draw(screen, r, face, op)
		}
	}

	if track != nil {
		mono := &text.GoTextFace{Source: h.monoSource, Size: fontSize * 0.9}
		label := track.Song
		if track.Artist != "" {
			label += " - " + track.Artist
		}
		tw, _ := text.Measure(label, mono, 0)
		boxW, boxH := tw+30, lineH+fontSize*1.5
		bx := float64(w) - boxW - fontSize
		drawBox(screen, bx, fontSize, boxW, boxH)

		op := &text.DrawOptions{}
		op.GeoM.Translate(bx+15, fontSize+5)
		op.ColorScale.Scale(1, 1, 1, 0.5)
		text.Draw(screen, "NOW PLAYING", titleFace, op)

		op = &text.DrawOptions{}
		op.GeoM.Translate(bx+15, fontSize+5+fontSize*1.2)
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, label, mono, op)
	}
}

func drawBox(screen *ebiten.Image, x, y, w, h float64) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), hudBackground, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, hudBorder, false)
}
