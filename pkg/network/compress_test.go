package network

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	t.Run("repetitive", func(t *testing.T) {
		src := bytes.Repeat([]byte{1, 2, 3, 4}, 1024)
		c, err := compress(src)
		require.NoError(t, err)
		require.Less(t, len(c), len(src))

		d, err := decompress(c)
		require.NoError(t, err)
		require.Equal(t, src, d)
	})
	t.Run("random", func(t *testing.T) {
		src := make([]byte, 256)
		_, _ = rand.Read(src)
		_, err := compress(src)
		require.ErrorIs(t, err, errIncompressible)
	})
}
