package globe

import (
	"math"

	"github.com/golang/geo/s1"
)

// latLngGrid packs cells in rows of constant latitude, every other row
// shifted by half a step. It stands in for H3 where cgo is unavailable.
type latLngGrid struct {
	spacing float64 // degrees between neighbouring centres
	rowStep float64
	rows    int
}

// newLatLngGrid shrinks the spacing by the H3 aperture (√7 in length) per
// resolution, from 20° at resolution 0, so both grids hold about as many cells.
func newLatLngGrid(resolution int) latLngGrid {
	spacing := 20 / math.Pow(math.Sqrt(7), float64(resolution))
	rowStep := spacing * math.Sqrt(3) / 2
	return latLngGrid{
		spacing: spacing,
		rowStep: rowStep,
		rows:    int(math.Floor(180 / rowStep)),
	}
}

func (g latLngGrid) blocks() int { return g.rows }

func (g latLngGrid) cells(row int) []hexCell {
	lat := -90 + g.rowStep/2 + float64(row)*g.rowStep
	cos := math.Cos(deg2rad(lat))
	if cos < 1e-3 {
		return nil
	}
	lngStep := g.spacing / cos
	offset := 0.0
	if row%2 == 1 {
		offset = lngStep / 2
	}
	var out []hexCell
	for lng := -180 + offset; lng < 180; lng += lngStep {
		out = append(out, hexCell{lat: lat, lng: lng})
	}
	return out
}

// radius is the circumradius of a regular hexagon at this spacing.
func (g latLngGrid) radius(hexCell) s1.Angle {
	return s1.Angle(g.spacing/math.Sqrt(3)) * s1.Degree
}
