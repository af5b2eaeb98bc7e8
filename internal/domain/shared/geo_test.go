package shared_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

func TestNewPoint_RejectsOutOfRangeLatLon(t *testing.T) {
	_, err := shared.NewPoint(91, 0)
	assert.Error(t, err)

	_, err = shared.NewPoint(0, 181)
	assert.Error(t, err)

	_, err = shared.NewPoint(-90, -180)
	assert.NoError(t, err)
}

func TestPoint_DistanceMeters_ZeroBetweenIdenticalPoints(t *testing.T) {
	p, err := shared.NewPoint(62.0, 6.0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.DistanceMeters(p))
}

func TestPoint_DistanceMeters_MatchesKnownEquatorialDegree(t *testing.T) {
	// One degree of longitude at the equator is roughly 111.2km.
	a, err := shared.NewPoint(0, 0)
	require.NoError(t, err)
	b, err := shared.NewPoint(0, 1)
	require.NoError(t, err)

	got := a.DistanceMeters(b)
	assert.InDelta(t, 111195.0, got, 200)
}

func TestCentroid_AveragesCoordinates(t *testing.T) {
	points := []shared.Point{{Lat: 0, Lon: 0}, {Lat: 2, Lon: 4}}

	got := shared.Centroid(points)

	assert.Equal(t, shared.Point{Lat: 1, Lon: 2}, got)
}

func TestCentroid_EmptyInputYieldsZeroValue(t *testing.T) {
	assert.Equal(t, shared.Point{}, shared.Centroid(nil))
}

func TestPoint_DistanceMeters_IsSymmetric(t *testing.T) {
	a, err := shared.NewPoint(62.47, 6.23)
	require.NoError(t, err)
	b, err := shared.NewPoint(63.1, 7.9)
	require.NoError(t, err)

	assert.True(t, math.Abs(a.DistanceMeters(b)-b.DistanceMeters(a)) < 1e-6)
}
