package kv

import "fmt"

const (
	StoreNone   = "none"
	StoreBadger = "badger"
	StorePebble = "pebble"
)

// Open result store backend by name. "none" (or empty) returns a nil store.
func Open(kind, dir string) (*ResultStore, error) {
	switch kind {
	case "", StoreNone:
		return nil, nil
	case StoreBadger:
		return OpenBadger(dir)
	case StorePebble:
		return OpenPebble(dir)
	default:
		return nil, fmt.Errorf("unknown store %q, expected %s, %s or %s", kind, StoreNone, StoreBadger, StorePebble)
	}
}
