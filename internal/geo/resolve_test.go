package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	home := NewLocation("A", 0, 0)
	work := NewLocation("B", 0, 1)
	known := []Location{home, work}

	tests := []struct {
		name      string
		point     Location
		known     []Location
		threshold float64
		want      string
	}{
		{"last match wins", NewLocation("p", 0, 0.5), known, 200_000, "B"},
		{"last match wins reversed order", NewLocation("p", 0, 0.5), []Location{work, home}, 200_000, "A"},
		{"only first near", NewLocation("p", 0, 0.001), known, 1_000, "A"},
		{"only second near", NewLocation("p", 0, 0.999), known, 1_000, "B"},
		{"nothing near", NewLocation("p", 10, 10), known, 1_000, Travelling},
		{"no known locations", NewLocation("p", 0, 0), nil, 1_000, Travelling},
		{"exactly on threshold", NewLocation("p", 0, 0), []Location{work}, home.DistanceTo(work), "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.point, tt.known, tt.threshold))
		})
	}
}
