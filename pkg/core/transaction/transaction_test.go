package transaction

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/txrelay/pkg/crypto/hash"
	"github.com/nspcc-dev/txrelay/pkg/io"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionFromBytes(t *testing.T) {
	tx := New(util.Uint160{1, 2, 3}, 42, 1000, []byte{0xde, 0xad})
	b := tx.Bytes()
	require.NotNil(t, b)
	require.Equal(t, len(b), tx.Size())
	require.Equal(t, hash.Keccak256(b), tx.Hash())

	decoded, err := NewTransactionFromBytes(b)
	require.NoError(t, err)
	require.Equal(t, tx.Hash(), decoded.Hash())
	require.Equal(t, tx.Sender, decoded.Sender)
	require.Equal(t, tx.Nonce, decoded.Nonce)
	require.Equal(t, uint64(1000), decoded.Fee.Uint64())
	require.Equal(t, tx.Data, decoded.Data)
	require.Equal(t, tx.Size(), decoded.Size())

	_, err = NewTransactionFromBytes(append(b, 0))
	require.Error(t, err)

	_, err = NewTransactionFromBytes(b[:len(b)-1])
	require.Error(t, err)
}

func TestHashDependsOnContents(t *testing.T) {
	a := New(util.Uint160{1}, 1, 1, nil)
	b := New(util.Uint160{1}, 1, 2, nil)
	c := New(util.Uint160{1}, 2, 1, nil)
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Equal(t, a.Hash(), New(util.Uint160{1}, 1, 1, nil).Hash())
}

func TestDecodeBinary(t *testing.T) {
	tx := New(util.Uint160{9}, 7, 5, []byte("payload"))
	bw := io.NewBufBinWriter()
	tx.EncodeBinary(bw.BinWriter)
	require.NoError(t, bw.Err)

	actual := new(Transaction)
	r := io.NewBinReaderFromBuf(bw.Bytes())
	actual.DecodeBinary(r)
	require.NoError(t, r.Err)
	require.Equal(t, tx.Hash(), actual.Hash())
}

func TestDecodeTooBigData(t *testing.T) {
	tx := New(util.Uint160{9}, 7, 5, make([]byte, MaxDataSize+1))
	bw := io.NewBufBinWriter()
	tx.EncodeBinary(bw.BinWriter)
	require.NoError(t, bw.Err)

	_, err := NewTransactionFromBytes(bw.Bytes())
	require.Error(t, err)
}

func TestMarshalUnmarshalJSON(t *testing.T) {
	tx := New(util.Uint160{1, 2, 3}, 3, 123456789, []byte{1, 2, 3})
	data, err := json.Marshal(tx)
	require.NoError(t, err)

	actual := new(Transaction)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, tx.Hash(), actual.Hash())
	require.Equal(t, "123456789", actual.Fee.Dec())

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	m["nonce"] = 4
	data, err = json.Marshal(m)
	require.NoError(t, err)
	require.Error(t, json.Unmarshal(data, new(Transaction)))
}
