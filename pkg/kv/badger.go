package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type badgerDB struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *ResultStore {
	return &ResultStore{db: &badgerDB{db}}
}

// OpenBadger opens a badger store in dir, or an in memory one when dir is empty.
func OpenBadger(dir string) (*ResultStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	return NewBadgerStore(db), nil
}

func (k *badgerDB) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}

		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	return val, err
}

func (k *badgerDB) writeBatch(ctx context.Context, pairs []kvPair) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if pair.delete {
			if err := batch.Delete(pair.key); err != nil {
				return err
			}
			continue
		}
		if err := batch.Set(pair.key, pair.value); err != nil {
			return err
		}
	}

	return batch.Flush()
}

func (k *badgerDB) scanPrefix(prefix []byte, fn func(key, value []byte) error) error {
	return k.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

func (k *badgerDB) close() error {
	return k.db.Close()
}
