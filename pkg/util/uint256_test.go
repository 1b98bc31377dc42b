package util

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint256UnmarshalJSON(t *testing.T) {
	str := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	expected, err := Uint256DecodeStringBE(str)
	require.NoError(t, err)

	// UnmarshalJSON decodes hex-strings
	var u1, u2 Uint256

	require.NoError(t, u1.UnmarshalJSON([]byte(`"`+str+`"`)))
	assert.True(t, expected.Equals(u1))

	testserdes(t, expected, &u2)

	// UnmarshalJSON decodes hex-strings prefixed by 0x
	require.NoError(t, u2.UnmarshalJSON([]byte(`"0x`+str+`"`)))
	assert.True(t, expected.Equals(u1))

	// UnmarshalJSON does not accepts numbers
	assert.Error(t, u2.UnmarshalJSON([]byte("123")))
}

func TestUint256DecodeString(t *testing.T) {
	hexStr := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	val, err := Uint256DecodeStringBE(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.String())

	_, err = Uint256DecodeStringBE(hexStr[1:])
	assert.Error(t, err)

	hexStr = "zzz7308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	_, err = Uint256DecodeStringBE(hexStr)
	assert.Error(t, err)
}

func TestUint256DecodeBytes(t *testing.T) {
	hexStr := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	b, err := hex.DecodeString(hexStr)
	require.NoError(t, err)

	val, err := Uint256DecodeBytesBE(b)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.String())

	_, err = Uint256DecodeBytesBE(b[1:])
	assert.Error(t, err)
}

func TestUint256Compare(t *testing.T) {
	a := Uint256{1, 2, 3}
	b := Uint256{1, 2, 4}
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
}
