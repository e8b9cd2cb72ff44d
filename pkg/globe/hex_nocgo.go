//go:build !cgo

package globe

// H3 needs cgo, which js/wasm builds do not have.
func newHexGrid(resolution int) hexGrid { return newLatLngGrid(resolution) }
