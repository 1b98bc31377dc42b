package txtracker

import (
	"sync"
	"testing"

	"github.com/nspcc-dev/txrelay/pkg/util"
	"github.com/stretchr/testify/require"
)

type testPeer struct {
	id string
}

func (p *testPeer) ID() string { return p.id }

func TestMarkKnown(t *testing.T) {
	tr := New(0)
	require.Equal(t, DefaultKnownTxsPerPeer, tr.size)

	p1, p2 := &testPeer{"1"}, &testPeer{"2"}
	h1, h2 := util.Uint256{1}, util.Uint256{2}

	// Unknown peer, no-op.
	tr.MarkKnown(p1, h1)
	require.False(t, tr.IsKnown(p1, h1))

	tr.OnPeerConnected(p1)
	tr.OnPeerConnected(p2)
	require.Equal(t, 2, tr.Len())

	tr.MarkKnown(p1, h1, h2)
	require.True(t, tr.IsKnown(p1, h1))
	require.True(t, tr.IsKnown(p1, h2))
	require.False(t, tr.IsKnown(p2, h1))

	// Reconnecting the same handle keeps the state.
	tr.OnPeerConnected(p1)
	require.True(t, tr.IsKnown(p1, h1))
}

func TestDisconnect(t *testing.T) {
	tr := New(10)
	p := &testPeer{"1"}
	h := util.Uint256{1}
	tr.OnPeerConnected(p)
	tr.MarkKnown(p, h)
	tr.OnPeerDisconnected(p)
	require.Equal(t, 0, tr.Len())
	require.False(t, tr.IsKnown(p, h))
	tr.MarkKnown(p, h)
	require.False(t, tr.IsKnown(p, h))
	require.Nil(t, tr.FilterUnknown(p, []util.Uint256{h}))

	// New handle for the same remote starts clean.
	again := &testPeer{"1"}
	tr.OnPeerConnected(again)
	require.False(t, tr.IsKnown(again, h))
	tr.OnPeerDisconnected(again)
	tr.OnPeerDisconnected(again)
}

func TestFilterUnknown(t *testing.T) {
	tr := New(10)
	p := &testPeer{"1"}
	tr.OnPeerConnected(p)
	tr.MarkKnown(p, util.Uint256{1})

	hashes := []util.Uint256{{1}, {2}, {3}}
	require.Equal(t, []util.Uint256{{2}, {3}}, tr.FilterUnknown(p, hashes))
	require.Empty(t, tr.FilterUnknown(p, hashes))
	require.True(t, tr.IsKnown(p, util.Uint256{3}))
}

func TestBoundedPerPeer(t *testing.T) {
	tr := New(2)
	p := &testPeer{"1"}
	tr.OnPeerConnected(p)
	tr.MarkKnown(p, util.Uint256{1}, util.Uint256{2}, util.Uint256{3})
	require.False(t, tr.IsKnown(p, util.Uint256{1}))
	require.True(t, tr.IsKnown(p, util.Uint256{3}))
}

func TestConcurrentFilterUnknown(t *testing.T) {
	const workers = 8
	tr := New(1000)
	p := &testPeer{"1"}
	tr.OnPeerConnected(p)

	hashes := make([]util.Uint256, 100)
	for i := range hashes {
		hashes[i] = util.Uint256{byte(i)}
	}
	var (
		wg    sync.WaitGroup
		mtx   sync.Mutex
		total int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := len(tr.FilterUnknown(p, hashes))
			mtx.Lock()
			total += n
			mtx.Unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, len(hashes), total)
}
