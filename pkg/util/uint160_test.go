package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint160UnmarshalJSON(t *testing.T) {
	str := "0263c1de100292813b5e075e585acc1bae963b2d"
	expected, err := Uint160DecodeStringBE(str)
	require.NoError(t, err)

	var u1, u2 Uint160
	require.NoError(t, u1.UnmarshalJSON([]byte(`"`+str+`"`)))
	assert.True(t, expected.Equals(u1))

	testserdes(t, expected, &u2)

	assert.Error(t, u2.UnmarshalJSON([]byte(`123`)))
}

func TestUint160DecodeString(t *testing.T) {
	hexStr := "2d3b96ae1bcc5a585e075e3b81920210dec16302"
	val, err := Uint160DecodeStringBE(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.String())

	val, err = Uint160DecodeStringBE("0x" + hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.StringBE())

	_, err = Uint160DecodeStringBE(hexStr[1:])
	assert.Error(t, err)

	_, err = Uint160DecodeBytesBE([]byte{1, 2, 3})
	assert.Error(t, err)
}

// testserdes marshals expected into JSON and unmarshals it back into actual.
func testserdes(t *testing.T, expected any, actual json.Unmarshaler) {
	data, err := json.Marshal(expected)
	require.NoError(t, err)
	require.NoError(t, actual.UnmarshalJSON(data))
}
