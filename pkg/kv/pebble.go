package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

type pebbleDB struct {
	db *pebble.DB
}

func NewPebbleStore(db *pebble.DB) *ResultStore {
	return &ResultStore{db: &pebbleDB{db}}
}

// OpenPebble opens a pebble store in dir, or an in memory one when dir is empty.
func OpenPebble(dir string) (*ResultStore, error) {
	opts := &pebble.Options{}
	if dir == "" {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble %q: %w", dir, err)
	}
	return NewPebbleStore(db), nil
}

func (k *pebbleDB) get(key []byte) ([]byte, error) {
	val, closer, err := k.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), val...), nil
}

func (k *pebbleDB) writeBatch(ctx context.Context, pairs []kvPair) error {
	batch := k.db.NewBatch()
	defer batch.Close()

	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if pair.delete {
			if err := batch.Delete(pair.key, nil); err != nil {
				return err
			}
			continue
		}
		if err := batch.Set(pair.key, pair.value, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (k *pebbleDB) scanPrefix(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := k.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}

	for iter.First(); iter.Valid(); iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		val := append([]byte(nil), iter.Value()...)
		if err := fn(key, val); err != nil {
			iter.Close()
			return err
		}
	}
	return iter.Close()
}

func (k *pebbleDB) close() error {
	return k.db.Close()
}

// prefixUpperBound smallest key greater than every key starting with prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
