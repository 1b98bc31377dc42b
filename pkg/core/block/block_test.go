package block

import (
	"testing"

	"github.com/nspcc-dev/txrelay/internal/testserdes"
	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/io"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestHashes(t *testing.T) {
	tx1 := transaction.New(util.Uint160{1}, 0, 10, nil)
	tx2 := transaction.New(util.Uint160{2}, 0, 20, nil)
	b := New(1, 1000, tx1, tx2)
	require.Equal(t, []util.Uint256{tx1.Hash(), tx2.Hash()}, b.Hashes())
	require.Empty(t, New(2, 0).Hashes())
}

func TestEncodeDecode(t *testing.T) {
	b := New(5, 12345,
		transaction.New(util.Uint160{1}, 1, 10, []byte{1}),
		transaction.New(util.Uint160{2}, 2, 20, []byte{2}))

	data, err := testserdes.EncodeBinary(b)
	require.NoError(t, err)

	actual := new(Block)
	require.NoError(t, testserdes.DecodeBinary(data, actual))
	require.Equal(t, b.Index, actual.Index)
	require.Equal(t, b.Timestamp, actual.Timestamp)
	require.Equal(t, b.Hashes(), actual.Hashes())
	require.Equal(t, b.Hash(), actual.Hash())
}

func TestDecodeTooManyTransactions(t *testing.T) {
	buf := io.NewBufBinWriter()
	buf.WriteU32LE(1)
	buf.WriteU64LE(1)
	buf.WriteVarUint(MaxTransactionsPerBlock + 1)

	r := io.NewBinReaderFromBuf(buf.Bytes())
	new(Block).DecodeBinary(r)
	require.ErrorIs(t, r.Err, ErrMaxContentsPerBlock)
}
