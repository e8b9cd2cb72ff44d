package globe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyDataset = errors.New("map dataset is empty")
	ErrNoPolygons   = errors.New("land dataset has no polygon features")
)

// Place is one named entry of the map dataset.
type Place struct {
	Name string  `json:"name"`
	CC   string  `json:"cc"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Point drops the naming and keeps the coordinate.
func (p Place) Point() GeoPoint { return GeoPoint{Lat: p.Lat, Lng: p.Lng} }

// Datasets are the two static inputs of the scene. They are never mutated
// after LoadDatasets returns.
type Datasets struct {
	Land   *geojson.FeatureCollection
	Places []Place
}

// Points returns the coordinates of every place, in dataset order.
func (d *Datasets) Points() []GeoPoint {
	points := make([]GeoPoint, len(d.Places))
	for i, p := range d.Places {
		points[i] = p.Point()
	}
	return points
}

// PlaceAt finds the first place at exactly the given coordinate.
func (d *Datasets) PlaceAt(lat, lng float64) (Place, bool) {
	for _, p := range d.Places {
		if p.Lat == lat && p.Lng == lng {
			return p, true
		}
	}
	return Place{}, false
}

// LoadDatasets parses the embedded datasets, or the files at the given paths when set.
func LoadDatasets(landPath, placesPath string) (*Datasets, error) {
	landData, err := readOrEmbedded(landPath, worldGeoJSON)
	if err != nil {
		return nil, err
	}
	placeData, err := readOrEmbedded(placesPath, placesJSON)
	if err != nil {
		return nil, err
	}

	land, err := ParseLand(landData)
	if err != nil {
		return nil, err
	}
	places, err := ParsePlaces(placeData)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("features", len(land.Features)).
		Int("places", len(places)).
		Msg("Datasets loaded")
	return &Datasets{Land: land, Places: places}, nil
}

func readOrEmbedded(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return data, nil
}

// ParseLand decodes a GeoJSON feature collection and requires at least one
// Polygon or MultiPolygon feature.
func ParseLand(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse land dataset: %w", err)
	}
	for _, f := range fc.Features {
		if f.Geometry != nil && (f.Geometry.IsPolygon() || f.Geometry.IsMultiPolygon()) {
			return fc, nil
		}
	}
	return nil, ErrNoPolygons
}

// ParsePlaces decodes the {"data": [...]} places document.
func ParsePlaces(data []byte) ([]Place, error) {
	var doc struct {
		Data []Place `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse map dataset: %w", err)
	}
	if len(doc.Data) == 0 {
		return nil, ErrEmptyDataset
	}
	return doc.Data, nil
}
