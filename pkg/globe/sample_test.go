package globe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSampleShape(t *testing.T) {
	d, err := LoadDatasets("", "")
	require.NoError(t, err)

	for seed := int64(0); seed < 50; seed++ {
		s, err := GenerateSample(d.Points(), 5, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		require.Len(t, s.Arcs, 5)
		require.Len(t, s.Points, 10)
		require.Len(t, s.Rings, 10)

		for i, a := range s.Arcs {
			assert.Equal(t, i+1, a.Order)
			assert.NotEqual(t, a.Start(), a.End(), "seed %d arc %d", seed, a.Order)

			assert.Equal(t, PointMarker{a.StartLat, a.StartLng}, s.Points[2*i])
			assert.Equal(t, PointMarker{a.EndLat, a.EndLng}, s.Points[2*i+1])
			assert.Equal(t, RingPulse{a.StartLat, a.StartLng}, s.Rings[2*i])
			assert.Equal(t, RingPulse{a.EndLat, a.EndLng}, s.Rings[2*i+1])
		}
	}
}

func TestGenerateSampleTwoDistinctPoints(t *testing.T) {
	a, b := GeoPoint{10, 20}, GeoPoint{-5, 100}
	// duplicates of the same coordinate must not matter
	points := []GeoPoint{a, a, a, b, a}

	s, err := GenerateSample(points, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, s.Arcs, 5)
	for _, arc := range s.Arcs {
		assert.NotEqual(t, arc.Start(), arc.End())
		assert.ElementsMatch(t, []GeoPoint{a, b}, []GeoPoint{arc.Start(), arc.End()})
	}
}

func TestGenerateSampleFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		points []GeoPoint
		n      int
		err    error
	}{
		{"empty", nil, 5, ErrEmptyDataset},
		{"single point", []GeoPoint{{1, 1}}, 5, ErrTooFewDistinctPoints},
		{"one distinct point", []GeoPoint{{1, 1}, {1, 1}, {1, 1}}, 5, ErrTooFewDistinctPoints},
		{"zero arcs", []GeoPoint{{1, 1}, {2, 2}}, 0, ErrInvalidArcCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateSample(tt.points, tt.n, rand.New(rand.NewSource(1)))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestGenerateSampleDeterministicWithSeed(t *testing.T) {
	d, err := LoadDatasets("", "")
	require.NoError(t, err)

	a, err := GenerateSample(d.Points(), 5, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := GenerateSample(d.Points(), 5, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateSampleNilRand(t *testing.T) {
	s, err := GenerateSample([]GeoPoint{{0, 0}, {1, 1}}, 3, nil)
	require.NoError(t, err)
	assert.Len(t, s.Arcs, 3)
}
