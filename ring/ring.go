// ring.go
//
// Bounded multi-producer/multi-consumer lock-free ring buffer, following
// Vyukov's sequenced-slot algorithm: every slot carries its own sequence
// number, and producers/consumers claim a cursor position with a CAS loop
// rather than a lock. N must be a power of two so `pos & mask` replaces
// the modulo.
//
// Unlike the teacher's SPSC ring24/ring32/ring56 variants — which assume
// a single writer and a single reader and so can skip the CAS on head/tail
// entirely — this ring supports any number of concurrent producers and
// consumers, at the cost of a retry loop on cursor contention. The slot
// layout and cache-line isolation discipline are otherwise identical to
// ring24.Ring: head, tail, and the slot array each start on their own
// cache line.

package ring

import (
	"sync/atomic"

	"github.com/quantflow/mdfeed/quote"
)

// slot couples a payload with its sequence stamp. The stamp alone decides
// whether the slot is claimable; data is only read or written by whichever
// goroutine holds the matching epoch.
type slot struct {
	sequence atomic.Uint64
	data     quote.Quote
}

// Ring is a fixed-capacity MPMC queue of quote.Quote values.
type Ring struct {
	_    [64]byte
	head atomic.Uint64 // producer cursor (next position to claim for push)
	_    [56]byte
	tail atomic.Uint64 // consumer cursor (next position to claim for pop)
	_    [56]byte
	mask uint64
	buf  []slot
}

// New allocates a ring of the given capacity, which must be a power of two
// of at least 2; New panics otherwise so the bit-masking arithmetic stays
// valid for the life of the ring.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring: size must be a power of two >= 2")
	}
	r := &Ring{
		mask: uint64(size - 1),
		buf:  make([]slot, size),
	}
	for i := range r.buf {
		r.buf[i].sequence.Store(uint64(i))
	}
	return r
}

// Capacity returns N, the number of usable slots. All N slots hold data
// simultaneously when full; no slot is reserved to disambiguate full from
// empty — that's the sequence protocol's job.
func (r *Ring) Capacity() int {
	return int(r.mask + 1)
}

// Push attempts to enqueue q, returning false if the ring is full.
// Safe for any number of concurrent producers.
func (r *Ring) Push(q quote.Quote) bool {
	pos := r.head.Load()
	var s *slot
	for {
		s = &r.buf[pos&r.mask]
		seq := s.sequence.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if r.head.CompareAndSwap(pos, pos+1) {
				s.data = q
				s.sequence.Store(pos + 1)
				return true
			}
			pos = r.head.Load()
		case diff < 0:
			return false // ring full
		default:
			pos = r.head.Load() // another producer is ahead, resample
		}
	}
}

// Pop attempts to dequeue one quote, returning false if the ring is empty.
// Safe for any number of concurrent consumers.
func (r *Ring) Pop() (quote.Quote, bool) {
	pos := r.tail.Load()
	var s *slot
	for {
		s = &r.buf[pos&r.mask]
		seq := s.sequence.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if r.tail.CompareAndSwap(pos, pos+1) {
				q := s.data
				s.sequence.Store(pos + uint64(len(r.buf)))
				return q, true
			}
			pos = r.tail.Load()
		case diff < 0:
			return quote.Quote{}, false // ring empty
		default:
			pos = r.tail.Load() // another consumer is ahead, resample
		}
	}
}

// Size returns an approximate item count (head - tail, both loaded
// independently). Not linearizable — observation-only.
func (r *Ring) Size() int {
	h := r.head.Load()
	t := r.tail.Load()
	return int(h - t)
}

// Utilization returns Size() / Capacity() as a fraction in [0, 1]
// (modulo the same non-linearizable caveat as Size).
func (r *Ring) Utilization() float64 {
	return float64(r.Size()) / float64(r.Capacity())
}

// Empty reports whether the ring currently holds no items.
func (r *Ring) Empty() bool {
	return r.Size() == 0
}
