package network

import (
	"errors"

	"github.com/nspcc-dev/txrelay/pkg/network/payload"
	"github.com/pierrec/lz4"
)

// errIncompressible is returned when compression doesn't make the data
// smaller.
var errIncompressible = errors.New("incompressible data")

// compress compresses bytes using lz4.
func compress(source []byte) ([]byte, error) {
	dest := make([]byte, lz4.CompressBlockBound(len(source)))
	size, err := lz4.CompressBlock(source, dest, nil)
	if err != nil {
		return nil, err
	}
	if size == 0 || size >= len(source) {
		return nil, errIncompressible
	}
	return dest[:size], nil
}

// decompress decompresses bytes using lz4.
func decompress(source []byte) ([]byte, error) {
	maxSize := len(source) * 255
	if maxSize > payload.MaxSize {
		maxSize = payload.MaxSize
	}
	dest := make([]byte, maxSize)
	size, err := lz4.UncompressBlock(source, dest)
	if err != nil {
		return nil, err
	}
	return dest[:size], nil
}
