/*
Package hash contains the hashing functions used for transaction and
block identifiers.
*/
package hash

import (
	"github.com/nspcc-dev/txrelay/pkg/util"
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the incoming byte slice using the legacy Keccak-256
// algorithm.
func Keccak256(data []byte) util.Uint256 {
	var hash util.Uint256
	hasher := sha3.NewLegacyKeccak256()
	_, _ = hasher.Write(data)
	hasher.Sum(hash[:0])
	return hash
}
