package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexMin(t *testing.T) {
	x := newIndex(FeePolicy{})
	require.Nil(t, x.min())

	items := []*Item{
		{txn: newTx(1, 0, 30), seq: 0},
		{txn: newTx(2, 0, 10), seq: 1},
		{txn: newTx(3, 0, 20), seq: 2},
	}
	for _, itm := range items {
		x.insert(itm)
	}
	require.Equal(t, items[1], x.min())

	require.True(t, x.delete(items[1]))
	require.Equal(t, items[2], x.min())
	require.Equal(t, 2, x.len())
}
