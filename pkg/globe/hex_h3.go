//go:build cgo

package globe

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/uber/h3-go/v4"
)

// h3Grid walks every H3 cell at a resolution, one base cell per block.
type h3Grid struct {
	resolution int
	base       []h3.Cell
}

func newHexGrid(resolution int) hexGrid {
	return h3Grid{resolution: resolution, base: h3.Res0Cells()}
}

func (g h3Grid) blocks() int { return len(g.base) }

func (g h3Grid) cells(block int) []hexCell {
	children := h3.CellToChildren(g.base[block], g.resolution)
	out := make([]hexCell, len(children))
	for i, c := range children {
		ll := h3.CellToLatLng(c)
		out[i] = hexCell{id: uint64(c), lat: ll.Lat, lng: ll.Lng}
	}
	return out
}

// radius averages the distance to the corners; cells shrink away from the
// icosahedron face centres and pentagons have five corners.
func (g h3Grid) radius(c hexCell) s1.Angle {
	boundary := h3.CellToBoundary(h3.Cell(c.id))
	if len(boundary) == 0 {
		return 0
	}
	centre := s2.LatLngFromDegrees(c.lat, c.lng)
	var sum s1.Angle
	for _, v := range boundary {
		sum += centre.Distance(s2.LatLngFromDegrees(v.Lat, v.Lng))
	}
	return sum / s1.Angle(len(boundary))
}
