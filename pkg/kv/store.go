package kv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/lintang-b-s/isochronex/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/uber/h3-go/v4"
)

const (
	batchSize = 1000
)

type kvPair struct {
	key   []byte
	value []byte
	// delete removes key instead of setting it.
	delete bool
}

// backend ordered key value store the isochrone records live in.
type backend interface {
	get(key []byte) ([]byte, error)
	writeBatch(ctx context.Context, pairs []kvPair) error
	scanPrefix(prefix []byte, fn func(key, value []byte) error) error
	close() error
}

// ResultStore persists isochrone records under iso/<origin_id>/<strategy>/<minutes>
// with a secondary index on the h3 cell of the origin.
type ResultStore struct {
	db backend
}

func (s *ResultStore) Put(ctx context.Context, rec Record) error {
	return s.PutBatch(ctx, []Record{rec})
}

// PutBatch saves records in write batches of batchSize. a record with the same key is overwritten,
// the last one wins when recs repeats a key. the h3 index entry of an overwritten record is removed
// when its origin moved to another cell.
func (s *ResultStore) PutBatch(ctx context.Context, recs []Record) error {
	latest := make(map[string]int, len(recs))
	for i, rec := range recs {
		if err := validOriginID(rec.OriginID); err != nil {
			return err
		}
		latest[rec.Key()] = i
	}

	batches := make([]kvPair, 0, batchSize)
	for i, rec := range recs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if latest[rec.Key()] != i {
			continue
		}

		val, err := encodeRecord(rec)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rec.Key(), err)
		}

		staleCell, err := s.staleCellKey(rec)
		if err != nil {
			return err
		}
		if staleCell != "" {
			batches = append(batches, kvPair{key: []byte(staleCell), delete: true})
		}
		batches = append(batches, kvPair{key: []byte(rec.Key()), value: val})
		if rec.OriginCell != "" {
			batches = append(batches, kvPair{key: []byte(rec.cellKey()), value: []byte(rec.Key())})
		}

		if len(batches) >= batchSize {
			if err := s.db.writeBatch(ctx, batches); err != nil {
				return err
			}
			batches = make([]kvPair, 0, batchSize)
		}
	}

	if len(batches) > 0 {
		if err := s.db.writeBatch(ctx, batches); err != nil {
			return err
		}
	}
	log.Printf("saving %d isochrone records done", len(recs))
	return nil
}

// staleCellKey h3 index key of the stored record under rec.Key() when rec no longer lives in that cell.
func (s *ResultStore) staleCellKey(rec Record) (string, error) {
	val, err := s.db.get([]byte(rec.Key()))
	if errors.Is(err, ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	old, err := decodeRecord(val)
	if err != nil {
		return "", fmt.Errorf("decode record %s: %w", rec.Key(), err)
	}
	if old.OriginCell == "" || old.OriginCell == rec.OriginCell {
		return "", nil
	}
	return old.cellKey(), nil
}

func (s *ResultStore) Get(originID, strategy string, minutes float64) (Record, error) {
	if err := validOriginID(originID); err != nil {
		return Record{}, err
	}
	val, err := s.db.get([]byte(RecordKey(originID, strategy, minutes)))
	if err != nil {
		return Record{}, err
	}
	return decodeRecord(val)
}

// ListByOrigin every record of one origin, ordered by strategy then minutes.
func (s *ResultStore) ListByOrigin(originID string) ([]Record, error) {
	if err := validOriginID(originID); err != nil {
		return nil, err
	}
	recs := make([]Record, 0)
	err := s.db.scanPrefix([]byte(originPrefix(originID)), func(key, value []byte) error {
		rec, err := decodeRecord(value)
		if err != nil {
			return fmt.Errorf("decode record %s: %w", key, err)
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortRecords(recs)
	return recs, nil
}

// ListNear records whose origin lies within radiusKm of (lat, lon). the h3 disk covering the circle
// narrows the scan, the great circle distance decides.
func (s *ResultStore) ListNear(lat, lon, radiusKm float64) ([]Record, error) {
	center := orb.Point{lon, lat}
	maxDist := radiusKm * 1000

	recs := make([]Record, 0)
	seen := make(map[string]struct{})
	for _, cell := range kRingIndexesArea(lat, lon, radiusKm) {
		keys := make([]string, 0)
		err := s.db.scanPrefix([]byte(cellPrefix+cell.String()+"/"), func(_, value []byte) error {
			keys = append(keys, string(value))
			return nil
		})
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			val, err := s.db.get([]byte(key))
			if errors.Is(err, ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			rec, err := decodeRecord(val)
			if err != nil {
				return nil, fmt.Errorf("decode record %s: %w", key, err)
			}
			if geo.DistanceMeters(center, orb.Point{rec.OriginLon, rec.OriginLat}) > maxDist {
				continue
			}
			recs = append(recs, rec)
		}
	}
	sortRecords(recs)
	return recs, nil
}

func (s *ResultStore) Close() error {
	return s.db.close()
}

func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].OriginID != recs[j].OriginID {
			return recs[i].OriginID < recs[j].OriginID
		}
		if recs[i].Strategy != recs[j].Strategy {
			return recs[i].Strategy < recs[j].Strategy
		}
		return recs[i].Minutes < recs[j].Minutes
	})
}

// kRingIndexesArea smallest h3 disk around (lat, lon) whose area covers a circle of searchRadiusKm.
func kRingIndexesArea(lat, lon, searchRadiusKm float64) []h3.Cell {
	home := h3.NewLatLng(lat, lon)
	origin := h3.LatLngToCell(home, geo.DefaultH3Resolution)
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea

	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}

	return h3.GridDisk(origin, radius)
}
