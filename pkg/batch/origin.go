package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrNoOrigins = errors.New("no point origins found")
)

// Origin named (lon, lat) point isochrones are computed around.
type Origin struct {
	ID       string
	Name     string
	Category string
	Point    orb.Point
}

func NewOrigin(id, name string, lon, lat float64) Origin {
	return Origin{ID: id, Name: name, Point: orb.Point{lon, lat}}
}

// LoadOrigins reads point features of a GeoJSON FeatureCollection. the id comes from the "id" property,
// then the feature id, then the feature position. "name" and "primary_category" are carried along.
// non point features are skipped.
func LoadOrigins(r io.Reader) ([]Origin, error) {
	bb, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(bb)
	if err != nil {
		return nil, fmt.Errorf("parse origins: %w", err)
	}

	origins := make([]Origin, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		id := propString(f.Properties, "id")
		if id == "" && f.ID != nil {
			id = toString(f.ID)
		}
		if id == "" {
			id = strconv.Itoa(i)
		}
		origins = append(origins, Origin{
			ID:       id,
			Name:     propString(f.Properties, "name"),
			Category: propString(f.Properties, "primary_category"),
			Point:    p,
		})
	}
	if len(origins) == 0 {
		return nil, ErrNoOrigins
	}
	return origins, nil
}

func LoadOriginsFile(path string) ([]Origin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadOrigins(f)
}

func propString(props geojson.Properties, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	return toString(v)
}

func toString(v interface{}) string {
	switch vv := v.(type) {
	case string:
		return vv
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	default:
		return fmt.Sprint(vv)
	}
}
