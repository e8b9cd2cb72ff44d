package globe

import (
	"context"
	"math"
	"runtime"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	geojson "github.com/paulmach/go.geojson"
	"golang.org/x/sync/errgroup"

	"github.com/sudorandom/globe-arcs/pkg/config"
)

// MaxHexResolution bounds the land grid; every step multiplies the cell
// count by about seven.
const MaxHexResolution = config.MaxHexResolution

// HexDot is one land cell, drawn as a dot.
type HexDot struct {
	Lat, Lng float64
	Pos      Vec3    // cell centre on the surface
	Radius   float64 // world units, after the margin is applied
}

// HexLayer is the dotted rendering of the land polygons.
type HexLayer struct {
	Dots       []HexDot
	Resolution int
}

// hexCell is a candidate cell of a global grid.
type hexCell struct {
	id       uint64 // H3 index; zero on the lat/lng grid
	lat, lng float64
}

// hexGrid enumerates a global grid in blocks that can be scanned in parallel.
type hexGrid interface {
	blocks() int
	cells(block int) []hexCell
	// radius is the angular distance from the centre of c to its corners.
	radius(c hexCell) s1.Angle
}

// landPolygon is an outer loop with its holes, indexed by the [lng, lat]
// bounding box of the outer ring.
type landPolygon struct {
	shell *s2.Loop
	holes []*s2.Loop
	rect  *rtreego.Rect
}

func (p *landPolygon) Bounds() *rtreego.Rect { return p.rect }

func (p *landPolygon) contains(pt s2.Point) bool {
	if !p.shell.ContainsPoint(pt) {
		return false
	}
	for _, h := range p.holes {
		if h.ContainsPoint(pt) {
			return false
		}
	}
	return true
}

// ringLoop turns a GeoJSON ring into a loop enclosing at most a hemisphere,
// whatever the winding order of the source.
func ringLoop(ring [][]float64) *s2.Loop {
	pts := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		if len(c) < 2 {
			return nil
		}
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(c[1], c[0])))
	}
	pts = dropDegenerate(pts)
	if len(pts) < 3 {
		return nil
	}
	l := s2.LoopFromPoints(pts)
	l.Normalize()
	return l
}

// dropDegenerate removes repeated vertices (including the closing one) and
// spikes A→B→A. Rings cut at the antimeridian run down to the pole and back,
// which leaves both behind.
func dropDegenerate(pts []s2.Point) []s2.Point {
	for {
		n := len(pts)
		if n < 3 {
			return pts
		}
		out := pts[:0:0]
		for i, p := range pts {
			prev := pts[(i+n-1)%n]
			if len(out) > 0 && p.ApproxEqual(out[len(out)-1]) {
				continue
			}
			if next := pts[(i+1)%n]; prev.ApproxEqual(next) && !p.ApproxEqual(prev) {
				continue
			}
			out = append(out, p)
		}
		for len(out) > 1 && out[len(out)-1].ApproxEqual(out[0]) {
			out = out[:len(out)-1]
		}
		if len(out) == n {
			return out
		}
		pts = out
	}
}

func newLandPolygon(rings [][][]float64) (*landPolygon, bool) {
	if len(rings) == 0 {
		return nil, false
	}
	shell := ringLoop(rings[0])
	if shell == nil {
		return nil, false
	}
	minLng, minLat := math.Inf(1), math.Inf(1)
	maxLng, maxLat := math.Inf(-1), math.Inf(-1)
	for _, c := range rings[0] {
		minLng, maxLng = math.Min(minLng, c[0]), math.Max(maxLng, c[0])
		minLat, maxLat = math.Min(minLat, c[1]), math.Max(maxLat, c[1])
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{minLng, minLat},
		[]float64{math.Max(maxLng-minLng, 1e-9), math.Max(maxLat-minLat, 1e-9)},
	)
	if err != nil {
		return nil, false
	}
	p := &landPolygon{shell: shell, rect: rect}
	for _, r := range rings[1:] {
		if h := ringLoop(r); h != nil {
			p.holes = append(p.holes, h)
		}
	}
	return p, true
}

// LandIndex answers point-in-land queries over a feature collection.
type LandIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewLandIndex indexes the Polygon and MultiPolygon features of fc.
func NewLandIndex(fc *geojson.FeatureCollection) *LandIndex {
	idx := &LandIndex{tree: rtreego.NewTree(2, 4, 16)}
	add := func(rings [][][]float64) {
		if p, ok := newLandPolygon(rings); ok {
			idx.tree.Insert(p)
			idx.count++
		}
	}
	for _, f := range fc.Features {
		switch {
		case f.Geometry == nil:
		case f.Geometry.IsPolygon():
			add(f.Geometry.Polygon)
		case f.Geometry.IsMultiPolygon():
			for _, poly := range f.Geometry.MultiPolygon {
				add(poly)
			}
		}
	}
	return idx
}

// Len is the number of indexed polygons.
func (idx *LandIndex) Len() int { return idx.count }

// Contains reports whether the coordinate lies on land.
func (idx *LandIndex) Contains(lat, lng float64) bool {
	q, err := rtreego.NewRect(rtreego.Point{lng, lat}, []float64{1e-9, 1e-9})
	if err != nil {
		return false
	}
	pt := GeoPoint{lat, lng}.Point()
	for _, s := range idx.tree.SearchIntersect(q) {
		if s.(*landPolygon).contains(pt) {
			return true
		}
	}
	return false
}

// BuildHexLayer keeps the cells of the global grid at resolution whose
// centres fall on land. Blocks of the grid are tested in parallel.
func BuildHexLayer(ctx context.Context, fc *geojson.FeatureCollection, resolution int, margin float64) (*HexLayer, error) {
	idx := NewLandIndex(fc)
	if idx.Len() == 0 {
		return nil, ErrNoPolygons
	}
	resolution = max(0, min(resolution, MaxHexResolution))
	return buildHexLayer(ctx, idx, newHexGrid(resolution), resolution, margin)
}

func buildHexLayer(ctx context.Context, idx *LandIndex, grid hexGrid, resolution int, margin float64) (*HexLayer, error) {
	blocks := make([][]HexDot, grid.blocks())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for b := range blocks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, c := range grid.cells(b) {
				if !idx.Contains(c.lat, c.lng) {
					continue
				}
				blocks[b] = append(blocks[b], HexDot{
					Lat:    c.lat,
					Lng:    c.lng,
					Pos:    LatLngToWorld(c.lat, c.lng, 0),
					Radius: grid.radius(c).Radians() * GlobeRadius * (1 - margin),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	layer := &HexLayer{Resolution: resolution}
	for _, b := range blocks {
		layer.Dots = append(layer.Dots, b...)
	}
	return layer, nil
}
