package wmma

import "sync"

// barrier is a cyclic rendezvous for the waves of one workgroup with
// dynamic membership: a wave that finishes, or never becomes eligible
// for work, calls Leave so the remaining waves can still meet. This
// mirrors the hardware behavior where exited waves no longer count
// toward the workgroup barrier.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	waiting int
	phase   uint64
}

func newBarrier(parties int) *barrier {
	b := &barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Await blocks until every remaining member of the workgroup has arrived,
// then releases them all and resets for the next phase.
func (b *barrier) Await() {
	b.mu.Lock()
	b.waiting++
	if b.waiting >= b.parties {
		b.advanceLocked()
		b.mu.Unlock()
		return
	}
	phase := b.phase
	for phase == b.phase {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// Leave removes the caller from the barrier's membership. If the caller
// was the last straggler the current phase completes.
func (b *barrier) Leave() {
	b.mu.Lock()
	b.parties--
	if b.parties > 0 && b.waiting >= b.parties {
		b.advanceLocked()
	}
	b.mu.Unlock()
}

func (b *barrier) advanceLocked() {
	b.waiting = 0
	b.phase++
	b.cond.Broadcast()
}
