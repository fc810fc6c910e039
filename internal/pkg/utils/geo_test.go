package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/city-geo-service/internal/domain"
)

func TestHaversineDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name     string
		a, b     domain.Coordinate
		expected float64
		delta    float64
	}{
		{
			name:     "one degree of longitude on the equator",
			a:        domain.Coordinate{Latitude: 0, Longitude: 0},
			b:        domain.Coordinate{Latitude: 0, Longitude: 1},
			expected: 111.19,
			delta:    0.01,
		},
		{
			name:     "ten degrees of longitude on the equator",
			a:        domain.Coordinate{Latitude: 0, Longitude: 0},
			b:        domain.Coordinate{Latitude: 0, Longitude: 10},
			expected: 1111.95,
			delta:    0.01,
		},
		{
			name:     "pole to pole",
			a:        domain.Coordinate{Latitude: 90, Longitude: 0},
			b:        domain.Coordinate{Latitude: -90, Longitude: 0},
			expected: math.Pi * earthRadiusKm,
			delta:    1e-6,
		},
		{
			name:     "Barcelona to Madrid",
			a:        domain.Coordinate{Latitude: 41.3851, Longitude: 2.1734},
			b:        domain.Coordinate{Latitude: 40.4168, Longitude: -3.7038},
			expected: 505,
			delta:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, HaversineDistance(tt.a, tt.b), tt.delta)
		})
	}
}

func TestHaversineDistance_SymmetricAndZero(t *testing.T) {
	points := []domain.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 64.1466, Longitude: -21.9426},
		{Latitude: 89.9, Longitude: 179.9},
		{Latitude: -89.9, Longitude: -179.9},
		{Latitude: 35.6762, Longitude: 139.6503},
	}

	for _, a := range points {
		assert.Equal(t, 0.0, HaversineDistance(a, a))
		for _, b := range points {
			assert.InDelta(t, HaversineDistance(a, b), HaversineDistance(b, a), 1e-6)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(-90, 180))
	assert.False(t, ValidateCoordinates(90.1, 0))
	assert.False(t, ValidateCoordinates(0, -180.5))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 111.19, RoundTo(111.19492664455873, 2))
	assert.Equal(t, 0.0, RoundTo(0.004, 2))
	assert.Equal(t, 1.01, RoundTo(1.005000001, 2))
}

func TestHaversineDistance_Antipodes(t *testing.T) {
	halfCircumference := math.Pi * earthRadiusKm

	// пара, на которой без ограничения h получался NaN
	a := domain.Coordinate{Latitude: -86.77999999999997, Longitude: -179}
	b := domain.Coordinate{Latitude: 86.77999999999997, Longitude: 1}
	assert.InDelta(t, halfCircumference, HaversineDistance(a, b), 0.01)

	for lat := -89.99; lat <= 89.99; lat += 0.37 {
		for lon := -180.0; lon < 0; lon += 7 {
			from := domain.Coordinate{Latitude: lat, Longitude: lon}
			to := domain.Coordinate{Latitude: -lat, Longitude: lon + 180}

			d := HaversineDistance(from, to)
			if !assert.False(t, math.IsNaN(d), "NaN for %v -> %v", from, to) {
				return
			}
			assert.InDelta(t, halfCircumference, d, 0.01)
			assert.LessOrEqual(t, d, halfCircumference)
		}
	}
}
