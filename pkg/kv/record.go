package kv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/lintang-b-s/isochronex/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

const (
	isochronePrefix = "iso/"
	cellPrefix      = "h3/"
)

var (
	ErrRecordNotFound = errors.New("isochrone record not found")
	ErrInvalidKey     = errors.New("origin id must be non empty and must not contain '/'")
)

// Record stored isochrone of one origin, strategy and trip time.
type Record struct {
	OriginID   string
	OriginName string
	// OriginCategory primary_category of the origin, e.g. "restaurant".
	OriginCategory string
	OriginLon      float64
	OriginLat      float64
	// OriginCell h3 cell of the origin, used for neighbourhood lookups.
	OriginCell string
	Strategy   string
	Minutes    float64
	// Geometry polygon or multipolygon in EPSG:4326 as WKB.
	Geometry       []byte
	AreaM2         float64
	ReachableNodes int
	Fallback       bool
	CreatedAt      int64
}

// NewRecord builds the stored form of an engine result.
func NewRecord(originID, originName, originCategory string, origin orb.Point, res isochrone.Result) (Record, error) {
	if err := validOriginID(originID); err != nil {
		return Record{}, err
	}
	geom, err := wkb.Marshal(res.Geometry)
	if err != nil {
		return Record{}, fmt.Errorf("marshal isochrone of %s: %w", originID, err)
	}
	return Record{
		OriginID:       originID,
		OriginName:     originName,
		OriginCategory: originCategory,
		OriginLon:      origin.Lon(),
		OriginLat:      origin.Lat(),
		OriginCell:     geo.OriginCell(origin, geo.DefaultH3Resolution),
		Strategy:       res.Strategy.String(),
		Minutes:        res.BudgetMinutes,
		Geometry:       geom,
		AreaM2:         res.AreaM2,
		ReachableNodes: res.ReachableNodes,
		Fallback:       res.Fallback,
		CreatedAt:      time.Now().Unix(),
	}, nil
}

// Polygon decodes the stored geometry.
func (r Record) Polygon() (orb.Geometry, error) {
	return wkb.Unmarshal(r.Geometry)
}

func (r Record) Key() string {
	return RecordKey(r.OriginID, r.Strategy, r.Minutes)
}

func (r Record) cellKey() string {
	return cellPrefix + r.OriginCell + "/" + strings.TrimPrefix(r.Key(), isochronePrefix)
}

// RecordKey iso/<origin_id>/<strategy>/<minutes>.
func RecordKey(originID, strategy string, minutes float64) string {
	return originPrefix(originID) + strategy + "/" + strconv.FormatFloat(minutes, 'f', -1, 64)
}

func originPrefix(originID string) string {
	return isochronePrefix + originID + "/"
}

func validOriginID(originID string) error {
	if originID == "" || strings.Contains(originID, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, originID)
	}
	return nil
}
