package syncstate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoInitialSync(t *testing.T) {
	s := New(false)
	require.Equal(t, NoInitialSync, s.Phase())
	require.False(t, s.HasInitialSyncPhase())
	require.True(t, s.IsInitialSyncDone())

	var called int
	s.OnInitialSyncDone(func() { called++ })
	require.Equal(t, 1, called)

	s.MarkInitialSyncPhaseAsDone()
	require.Equal(t, NoInitialSync, s.Phase())
	require.Equal(t, 1, called)
}

func TestInitialSync(t *testing.T) {
	s := New(true)
	require.Equal(t, InitialSyncPending, s.Phase())
	require.True(t, s.HasInitialSyncPhase())
	require.False(t, s.IsInitialSyncDone())

	var first, second int
	s.OnInitialSyncDone(func() { first++ })
	s.OnInitialSyncDone(func() { second++ })
	require.Equal(t, 0, first)

	s.MarkInitialSyncPhaseAsDone()
	require.Equal(t, InitialSyncDone, s.Phase())
	require.True(t, s.HasInitialSyncPhase())
	require.True(t, s.IsInitialSyncDone())
	require.Equal(t, 1, first)
	require.Equal(t, 1, second)

	s.MarkInitialSyncPhaseAsDone()
	require.Equal(t, 1, first)
	require.Equal(t, 1, second)

	// Late subscribers are called immediately.
	var late int
	s.OnInitialSyncDone(func() { late++ })
	require.Equal(t, 1, late)
}

func TestConcurrentMarkDone(t *testing.T) {
	s := New(true)
	var (
		mtx    sync.Mutex
		called int
		wg     sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		s.OnInitialSyncDone(func() {
			mtx.Lock()
			called++
			mtx.Unlock()
		})
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.MarkInitialSyncPhaseAsDone()
		}()
	}
	wg.Wait()
	require.Equal(t, 10, called)
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "pending", InitialSyncPending.String())
	require.Equal(t, "done", InitialSyncDone.String())
	require.Equal(t, "none", NoInitialSync.String())
	require.Equal(t, "unknown", Phase(42).String())
}
