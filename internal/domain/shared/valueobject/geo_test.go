package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoint(t *testing.T) {
	_, err := NewPoint(91, 0)
	assert.Error(t, err)

	_, err = NewPoint(0, -181)
	assert.Error(t, err)

	p, err := NewPoint(48.8566, 2.3522)
	require.NoError(t, err)
	assert.False(t, p.IsZero())
}

func TestPoint_DistanceKm(t *testing.T) {
	paris := Point{Lat: 48.8566, Lng: 2.3522}
	london := Point{Lat: 51.5074, Lng: -0.1278}

	assert.InDelta(t, 343.7, paris.DistanceKm(london), 2.0)
	assert.InDelta(t, paris.DistanceKm(london), london.DistanceKm(paris), 1e-9)
	assert.Zero(t, paris.DistanceKm(paris))
}

func TestNewAddress(t *testing.T) {
	addr, err := NewAddress("  10 Rue de Rivoli ", "Paris", Point{Lat: 48.85, Lng: 2.35})
	require.NoError(t, err)
	assert.Equal(t, "10 Rue de Rivoli", addr.Line1)
	assert.Equal(t, "10 Rue de Rivoli, Paris", addr.String())

	_, err = NewAddress("", "Paris", Point{})
	assert.Error(t, err)

	_, err = NewAddress("1 Main St", " ", Point{})
	assert.Error(t, err)
}
