package globe

import _ "embed"

//go:embed data/world.geo.json
var worldGeoJSON []byte

//go:embed data/map.json
var placesJSON []byte
