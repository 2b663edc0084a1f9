package batch

import (
	"context"
	"io"

	"github.com/lintang-b-s/isochronex/pkg/geo"
	"github.com/lintang-b-s/isochronex/pkg/kv"
	"github.com/lintang-b-s/isochronex/pkg/util"
	"github.com/paulmach/orb/geojson"
)

// FillColor RGBA fill of an isochrone by trip time: green for the 5 minute band, yellow for the 10 minute band,
// red for any other budget.
func FillColor(minutes float64) [4]uint8 {
	switch minutes {
	case 5:
		return [4]uint8{0, 200, 100, 120}
	case 10:
		return [4]uint8{255, 200, 0, 100}
	default:
		return [4]uint8{255, 80, 80, 80}
	}
}

// FeatureCollection one feature per successful record, failed records are left out.
func FeatureCollection(records []Record) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, rec := range records {
		if rec.Err != nil {
			continue
		}
		f := geojson.NewFeature(rec.Result.Geometry)
		fill := FillColor(rec.Minutes)
		f.Properties["origin_id"] = rec.Origin.ID
		f.Properties["origin_name"] = rec.Origin.Name
		if rec.Origin.Category != "" {
			f.Properties["primary_category"] = rec.Origin.Category
		}
		f.Properties["minutes"] = rec.Minutes
		f.Properties["strategy"] = rec.Strategy.String()
		f.Properties["area_m2"] = util.RoundFloat(rec.Result.AreaM2, 2)
		f.Properties["reach_m"] = util.RoundFloat(geo.MaxDistanceMeters(rec.Origin.Point, rec.Result.Geometry), 2)
		f.Properties["reachable_nodes"] = rec.Result.ReachableNodes
		f.Properties["fallback"] = rec.Result.Fallback
		f.Properties["fill"] = []int{int(fill[0]), int(fill[1]), int(fill[2]), int(fill[3])}
		fc.Append(f)
	}
	return fc
}

func WriteGeoJSON(w io.Writer, records []Record) error {
	bb, err := FeatureCollection(records).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(bb)
	return err
}

// SaveRecords stores every successful record.
func SaveRecords(ctx context.Context, store *kv.ResultStore, records []Record) error {
	recs := make([]kv.Record, 0, len(records))
	for _, rec := range records {
		if rec.Err != nil {
			continue
		}
		kvRec, err := kv.NewRecord(rec.Origin.ID, rec.Origin.Name, rec.Origin.Category, rec.Origin.Point, rec.Result)
		if err != nil {
			return err
		}
		recs = append(recs, kvRec)
	}
	return store.PutBatch(ctx, recs)
}
