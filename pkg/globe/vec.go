package globe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"

	"github.com/sudorandom/globe-arcs/pkg/config"
)

// GlobeRadius is the radius of the globe in world units. Altitudes are
// expressed as a fraction of it.
const GlobeRadius = config.GlobeRadius

// Vec3 is a position in world space. +Y is north and longitude 0 on the
// equator faces +Z.
type Vec3 = r3.Vector

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

// LatLng converts p for the s2 geometry functions.
func (p GeoPoint) LatLng() s2.LatLng { return s2.LatLngFromDegrees(p.Lat, p.Lng) }

// Point is p on the unit sphere.
func (p GeoPoint) Point() s2.Point { return s2.PointFromLatLng(p.LatLng()) }

// pointToWorld scales a unit sphere point to the globe at altitude. s2 puts
// (0, 0) on +X and the north pole on +Z, so the axes are rotated.
func pointToWorld(p s2.Point, altitude float64) Vec3 {
	r := GlobeRadius * (1 + altitude)
	return Vec3{X: p.Y * r, Y: p.Z * r, Z: p.X * r}
}

func worldToPoint(v Vec3) s2.Point {
	return s2.PointFromCoords(v.Z, v.X, v.Y)
}

// LatLngToWorld places a coordinate on (or above) the globe.
func LatLngToWorld(lat, lng, altitude float64) Vec3 {
	return pointToWorld(GeoPoint{lat, lng}.Point(), altitude)
}

// WorldToLatLng is the inverse of LatLngToWorld, ignoring altitude.
func WorldToLatLng(v Vec3) GeoPoint {
	if v.Norm2() == 0 {
		return GeoPoint{}
	}
	ll := s2.LatLngFromPoint(worldToPoint(v))
	return GeoPoint{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}
}

// AngularDistance is the great-circle angle between two coordinates, in radians.
func AngularDistance(a, b GeoPoint) float64 {
	return a.LatLng().Distance(b.LatLng()).Radians()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
