package openpaths

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dvcrn/weasel/internal/geo"
	"github.com/go-playground/validator/v10"
)

// Point is one location-history sample.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	T   int64   `json:"t"`
}

// Time returns the sample time in the local zone.
func (p Point) Time() time.Time {
	return time.Unix(p.T, 0)
}

// Location returns the point as a geo.Location on the Earth sphere.
func (p Point) Location() geo.Location {
	return geo.NewLocation("last_location", p.Lat, p.Lon)
}

type wirePoint struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	T   *float64 `json:"t" validate:"required,gte=0"`
}

var pointValidator = validator.New()

// ParsePoints decodes an API response into points ordered most recent first.
// The API is expected to return that order already; sorting here guards
// against it not doing so.
func ParsePoints(data []byte) ([]Point, error) {
	var wire []wirePoint
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	points := make([]Point, 0, len(wire))
	for i, w := range wire {
		if err := pointValidator.Struct(w); err != nil {
			return nil, fmt.Errorf("%w: point %d: %v", ErrDecode, i, err)
		}
		points = append(points, Point{Lat: *w.Lat, Lon: *w.Lon, T: int64(*w.T)})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].T > points[j].T
	})
	return points, nil
}
