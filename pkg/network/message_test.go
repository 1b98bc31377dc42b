package network

import (
	"bytes"
	"testing"

	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/io"
	"github.com/nspcc-dev/txrelay/pkg/network/payload"
	"github.com/nspcc-dev/txrelay/pkg/util"
	"github.com/stretchr/testify/require"
)

func testEncodeDecode(t *testing.T, cmd CommandType, p payload.Payload) *Message {
	expected := NewMessage(cmd, p)
	data, err := expected.Bytes()
	require.NoError(t, err)

	actual := &Message{}
	require.NoError(t, actual.Decode(io.NewBinReaderFromBuf(data)))
	require.Equal(t, cmd, actual.Command)
	return actual
}

func TestEncodeDecodeTransactions(t *testing.T) {
	tx := newTestTx(1, 2, 3)
	actual := testEncodeDecode(t, CMDTX, payload.NewTransactions(tx))
	txs := actual.Payload.(*payload.Transactions)
	require.Len(t, txs.Values, 1)
	require.Equal(t, tx.Hash(), txs.Values[0].Hash())
}

func TestEncodeDecodeAnnouncement(t *testing.T) {
	a := payload.NewAnnouncement([]util.Uint256{{1}}, []uint32{42})
	actual := testEncodeDecode(t, CMDPooledTxHashes, a)
	require.Equal(t, a, actual.Payload)
}

func TestEncodeDecodeInventory(t *testing.T) {
	for _, cmd := range []CommandType{CMDGetData, CMDNotFound} {
		inv := payload.NewInventory(payload.TXType, []util.Uint256{{1}, {2}})
		actual := testEncodeDecode(t, cmd, inv)
		require.Equal(t, inv, actual.Payload)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("unknown command", func(t *testing.T) {
		data, err := NewMessage(CommandType(0xff), payload.NewNullPayload()).Bytes()
		require.NoError(t, err)
		require.ErrorIs(t, new(Message).Decode(io.NewBinReaderFromBuf(data)), ErrUnknownCommand)
	})
	t.Run("truncated", func(t *testing.T) {
		data, err := NewMessage(CMDGetData, payload.NewInventory(payload.TXType, []util.Uint256{{1}})).Bytes()
		require.NoError(t, err)
		require.Error(t, new(Message).Decode(io.NewBinReaderFromBuf(data[:len(data)-1])))
	})
	t.Run("bad payload", func(t *testing.T) {
		data, err := NewMessage(CMDTX, payload.NewNullPayload()).Bytes()
		require.NoError(t, err)
		require.Error(t, new(Message).Decode(io.NewBinReaderFromBuf(data)))
	})
}

func TestCommandString(t *testing.T) {
	require.Equal(t, "CMDTX", CMDTX.String())
	require.Equal(t, "CMDPooledTxHashes", CMDPooledTxHashes.String())
	require.Equal(t, "CMDGetData", CMDGetData.String())
	require.Equal(t, "CMDNotFound", CMDNotFound.String())
	require.Equal(t, "CommandType(255)", CommandType(0xff).String())
}

func TestEncodeDecodeCompressed(t *testing.T) {
	txs := make([]*transaction.Transaction, 0, 32)
	for i := 0; i < 32; i++ {
		txs = append(txs, newTestTx(1, uint64(i), 10))
	}
	msg := NewMessage(CMDTX, payload.NewTransactions(txs...))
	data, err := msg.Bytes()
	require.NoError(t, err)
	require.Equal(t, Compressed, msg.Flags)

	actual := &Message{}
	require.NoError(t, actual.Decode(io.NewBinReaderFromBuf(data)))
	require.Equal(t, Compressed, actual.Flags)
	got := actual.Payload.(*payload.Transactions)
	require.Len(t, got.Values, len(txs))
	for i := range txs {
		require.Equal(t, txs[i].Hash(), got.Values[i].Hash())
	}

	t.Run("small payload", func(t *testing.T) {
		msg := NewMessage(CMDTX, payload.NewTransactions(txs[0]))
		_, err := msg.Bytes()
		require.NoError(t, err)
		require.Equal(t, None, msg.Flags)
	})
	t.Run("not compressible command", func(t *testing.T) {
		hashes := make([]util.Uint256, 64)
		msg := NewMessage(CMDGetData, payload.NewInventory(payload.TXType, hashes))
		_, err := msg.Bytes()
		require.NoError(t, err)
		require.Equal(t, None, msg.Flags)
	})
	t.Run("corrupted", func(t *testing.T) {
		w := io.NewBufBinWriter()
		w.WriteB(byte(Compressed))
		w.WriteB(byte(CMDTX))
		w.WriteVarBytes(bytes.Repeat([]byte{0xff}, 16))
		require.NoError(t, w.Err)
		require.ErrorIs(t, new(Message).Decode(io.NewBinReaderFromBuf(w.Bytes())), errInvalidPayload)
	})
	t.Run("unknown flags", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] = 0x80
		require.Error(t, new(Message).Decode(io.NewBinReaderFromBuf(bad)))
	})
}
