package mempool

import (
	"time"

	"github.com/nspcc-dev/txrelay/pkg/core/mempoolevent"
)

const (
	// minRetentionTick is the minimum interval between retention sweeps.
	minRetentionTick = time.Second
	// expireChunkSize is the maximum number of transactions removed by
	// the retention sweep under a single lock.
	expireChunkSize = 256
)

// SetRetentionPeriod sets the maximum time a transaction can stay in the
// pool. Zero disables the retention sweep.
func (mp *Pool) SetRetentionPeriod(d time.Duration) {
	mp.lock.Lock()
	defer mp.lock.Unlock()
	mp.retentionPeriod = d
	mp.retentionTick = d / 2
	if mp.retentionTick < minRetentionTick {
		mp.retentionTick = minRetentionTick
	}
}

// RemoveExpired removes transactions that stay in the pool longer than
// the retention period irrespective of their priority. It returns the
// number of removed transactions. Transactions are removed in chunks of
// expireChunkSize, the pool lock is released between chunks.
func (mp *Pool) RemoveExpired() int {
	var total int
	for {
		n, more := mp.removeExpiredChunk()
		total += n
		if !more {
			return total
		}
	}
}

// removeExpiredChunk removes up to expireChunkSize oldest expired
// transactions and returns their number and whether there can be more.
func (mp *Pool) removeExpiredChunk() (int, bool) {
	var events []mempoolevent.Event

	mp.lock.Lock()
	if mp.retentionPeriod == 0 {
		mp.lock.Unlock()
		return 0, false
	}
	var (
		deadline = mp.now().Add(-mp.retentionPeriod)
		expired  = make([]*Item, 0, expireChunkSize)
	)
	mp.byAge.Ascend(func(itm *Item) bool {
		if !itm.added.Before(deadline) {
			return false
		}
		expired = append(expired, itm)
		return len(expired) < expireChunkSize
	})
	for _, itm := range expired {
		mp.removeItem(itm)
		events = append(events, mempoolevent.Event{
			Type:   mempoolevent.TransactionRemoved,
			Tx:     itm.txn,
			Reason: mempoolevent.ReasonExpired,
		})
	}
	if len(expired) != 0 && mp.updateMetricsCb != nil {
		mp.updateMetricsCb(mp.count())
	}
	mp.lock.Unlock()

	mp.notify(events)
	return len(expired), len(expired) == expireChunkSize
}

// RunRetention starts the retention sweep routine if the retention period
// is set. StopRetention should be called to free the resources.
func (mp *Pool) RunRetention() {
	mp.lock.RLock()
	tick := mp.retentionTick
	period := mp.retentionPeriod
	mp.lock.RUnlock()
	if period == 0 || !mp.retentionOn.CompareAndSwap(false, true) {
		return
	}
	mp.retentionStop = make(chan struct{})
	mp.retentionDone = make(chan struct{})
	go mp.retentionLoop(tick)
}

// StopRetention stops the retention sweep routine and waits for it to exit.
func (mp *Pool) StopRetention() {
	if !mp.retentionOn.CompareAndSwap(true, false) {
		return
	}
	close(mp.retentionStop)
	<-mp.retentionDone
}

func (mp *Pool) retentionLoop(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer func() {
		ticker.Stop()
		close(mp.retentionDone)
	}()
	for {
		select {
		case <-mp.retentionStop:
			return
		case <-ticker.C:
			mp.RemoveExpired()
		}
	}
}
