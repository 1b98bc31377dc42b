package hash

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeccak256(t *testing.T) {
	// Well-known Keccak-256 of the empty input.
	expected := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	res := Keccak256(nil)
	assert.Equal(t, expected, hex.EncodeToString(res.BytesBE()))

	res = Keccak256([]byte("hello"))
	assert.Equal(t, "1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8", hex.EncodeToString(res.BytesBE()))
}
