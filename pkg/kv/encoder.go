package kv

import (
	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

func encodeRecord(rec Record) ([]byte, error) {
	bb, err := binary.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return compress(bb)
}

func decodeRecord(bbCompressed []byte) (Record, error) {
	var rec Record
	bb, err := decompress(bbCompressed)
	if err != nil {
		return rec, err
	}
	err = binary.Unmarshal(bb, &rec)
	return rec, err
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
