// metrics.go
//
// Wait-free counter bundle shared between the producer and consumer.
// Every field is an atomic.Uint64 updated with relaxed fetch-add (Go's
// sync/atomic has no weaker mode to ask for); max_latency_ns additionally
// uses a compare-and-swap loop so concurrent updaters never clobber a
// larger value with a smaller one.
//
// Layout follows the ring's cache-line isolation convention: each counter
// sits on its own line so producer and consumer cores never contend on
// the metrics block itself.

package metrics

import "sync/atomic"

// Metrics is a flat bundle of monotonically non-decreasing counters.
//
//go:notinheap
//go:align 64
type Metrics struct {
	_                 [64]byte
	MessagesReceived  atomic.Uint64 // successful producer pushes
	_                 [56]byte
	MessagesProcessed atomic.Uint64 // successful hand-offs, producer and consumer sides both touch this
	_                 [56]byte
	TotalLatencyNs    atomic.Uint64 // sum of per-push latency samples
	_                 [56]byte
	MaxLatencyNs      atomic.Uint64 // largest per-push latency observed
	_                 [56]byte
	BufferOverruns    atomic.Uint64 // failed pushes (ring full)
	_                 [56]byte
	BufferUnderruns   atomic.Uint64 // failed pops (ring empty)
	_                 [56]byte
}

// Snapshot is a point-in-time, non-atomic read of every counter, used for
// status reports where internal consistency across fields is not required.
type Snapshot struct {
	MessagesReceived  uint64
	MessagesProcessed uint64
	TotalLatencyNs    uint64
	MaxLatencyNs      uint64
	BufferOverruns    uint64
	BufferUnderruns   uint64
}

// RecordPush accounts for one successful producer-side push observed with
// the given latency sample (the duration of the push call itself).
func (m *Metrics) RecordPush(latencyNs uint64) {
	m.MessagesReceived.Add(1)
	m.MessagesProcessed.Add(1)
	m.TotalLatencyNs.Add(latencyNs)
	m.bumpMax(latencyNs)
}

// bumpMax CAS-loops MaxLatencyNs up to latencyNs if it is currently smaller.
func (m *Metrics) bumpMax(latencyNs uint64) {
	for {
		cur := m.MaxLatencyNs.Load()
		if cur >= latencyNs {
			return
		}
		if m.MaxLatencyNs.CompareAndSwap(cur, latencyNs) {
			return
		}
	}
}

// RecordPop accounts for one successful consumer-side pop.
func (m *Metrics) RecordPop() {
	m.MessagesProcessed.Add(1)
}

// RecordOverrun accounts for one failed push (ring full) and reports the
// post-increment overrun count so callers can throttle notifications.
func (m *Metrics) RecordOverrun() uint64 {
	return m.BufferOverruns.Add(1)
}

// RecordUnderrun accounts for one failed pop (ring empty).
func (m *Metrics) RecordUnderrun() {
	m.BufferUnderruns.Add(1)
}

// Reset zeroes every counter. Callers must ensure both the producer and
// consumer are quiescent before calling this — it is not itself
// synchronized against concurrent updates.
func (m *Metrics) Reset() {
	m.MessagesReceived.Store(0)
	m.MessagesProcessed.Store(0)
	m.TotalLatencyNs.Store(0)
	m.MaxLatencyNs.Store(0)
	m.BufferOverruns.Store(0)
	m.BufferUnderruns.Store(0)
}

// Load takes a non-atomic snapshot of all six counters.
func (m *Metrics) Load() Snapshot {
	return Snapshot{
		MessagesReceived:  m.MessagesReceived.Load(),
		MessagesProcessed: m.MessagesProcessed.Load(),
		TotalLatencyNs:    m.TotalLatencyNs.Load(),
		MaxLatencyNs:      m.MaxLatencyNs.Load(),
		BufferOverruns:    m.BufferOverruns.Load(),
		BufferUnderruns:   m.BufferUnderruns.Load(),
	}
}

// AvgLatencyNs returns total_latency_ns / max(1, messages_processed).
func (s Snapshot) AvgLatencyNs() uint64 {
	if s.MessagesProcessed == 0 {
		return 0
	}
	return s.TotalLatencyNs / s.MessagesProcessed
}

// PushSuccessRate returns 1 - overruns / max(1, received + overruns).
func (s Snapshot) PushSuccessRate() float64 {
	denom := s.MessagesReceived + s.BufferOverruns
	if denom == 0 {
		denom = 1
	}
	return 1.0 - float64(s.BufferOverruns)/float64(denom)
}
