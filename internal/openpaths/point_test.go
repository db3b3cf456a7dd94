package openpaths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointsOrdersMostRecentFirst(t *testing.T) {
	points, err := ParsePoints([]byte(`[
		{"lat": 1, "lon": 1, "t": 100},
		{"lat": 3, "lon": 3, "t": 300},
		{"lat": 2, "lon": 2, "t": 200}
	]`))
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, int64(300), points[0].T)
	assert.Equal(t, int64(200), points[1].T)
	assert.Equal(t, int64(100), points[2].T)
}

func TestParsePointsAcceptsExtraFields(t *testing.T) {
	points, err := ParsePoints([]byte(`[{"lat": 1.5, "lon": 2.5, "t": 10, "alt": 30, "device": "x"}]`))
	require.NoError(t, err)
	assert.Equal(t, []Point{{Lat: 1.5, Lon: 2.5, T: 10}}, points)
}

func TestParsePointsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not an array", `{"lat": 1}`},
		{"missing lat", `[{"lon": 1, "t": 1}]`},
		{"missing t", `[{"lat": 1, "lon": 1}]`},
		{"string lat", `[{"lat": "1", "lon": 1, "t": 1}]`},
		{"lat out of range", `[{"lat": 95, "lon": 1, "t": 1}]`},
		{"lon out of range", `[{"lat": 1, "lon": -181, "t": 1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePoints([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestPointLocation(t *testing.T) {
	p := Point{Lat: 10, Lon: 20, T: 1}
	loc := p.Location()
	assert.Equal(t, "last_location", loc.Name)
	assert.Equal(t, 10.0, loc.Lat)
	assert.Equal(t, 20.0, loc.Lon)
	assert.Equal(t, int64(1), p.Time().Unix())
}
