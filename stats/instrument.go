// instrument.go
//
// Per-instrument VWAP aggregation. Owned exclusively by one consumer
// goroutine — no atomics or locks guard the accumulators, matching the
// spec's single-writer discipline (if multiple consumers are used, each
// must own a disjoint shard of instrument ids, or the caller must add its
// own guard; this type itself assumes exclusive-owner access).
//
// Storage is adapted from the teacher's localidx.Hash Robin-Hood map,
// repurposed from "pool address -> trading-pair id" to "instrument id ->
// stats-slot index", backing a flat, growable slice of accumulators
// instead of a generic map[int32]*VWAP.

package stats

import "github.com/quantflow/mdfeed/localidx"

// VWAP accumulates price*qty and qty for one instrument.
type VWAP struct {
	CumPxQty float64
	CumQty   float64
	Trades   uint64
}

// Update folds one pseudo-trade into the accumulator.
func (v *VWAP) Update(price, qty float64) {
	v.CumPxQty += price * qty
	v.CumQty += qty
	v.Trades++
}

// Value returns the current VWAP, or 0 if no quantity has accumulated yet.
func (v VWAP) Value() float64 {
	if v.CumQty > 0 {
		return v.CumPxQty / v.CumQty
	}
	return 0.0
}

// Report is one instrument's VWAP snapshot, as emitted in status reports.
type Report struct {
	InstrumentID int32
	VWAP         float64
	Trades       uint64
}

// Table maps instrument id to its VWAP accumulator. The zero value is not
// ready to use; construct with NewTable.
type Table struct {
	idx     localidx.Hash
	ids     []int32
	entries []VWAP
	n       int
}

// NewTable allocates a table with room for roughly capacity distinct
// instruments before its first grow.
func NewTable(capacity int) *Table {
	if capacity < 1 {
		capacity = 1
	}
	return &Table{
		idx:     localidx.New(capacity),
		ids:     make([]int32, capacity),
		entries: make([]VWAP, capacity),
	}
}

// key maps an instrument id to the Robin-Hood table's key space, which
// reserves 0 as the empty-slot sentinel.
func key(instrumentID int32) uint32 {
	return uint32(instrumentID) + 1
}

// slot returns the accumulator for instrumentID, creating it on first use.
func (t *Table) slot(instrumentID int32) *VWAP {
	k := key(instrumentID)
	if i, ok := t.idx.Get(k); ok {
		return &t.entries[i]
	}

	if t.n >= len(t.entries) {
		t.grow()
	}
	i := t.n
	t.idx.Put(k, uint32(i))
	t.ids[i] = instrumentID
	t.n++
	return &t.entries[i]
}

// grow doubles capacity, rebuilding the Robin-Hood index over the existing
// keys (their slot indices are unchanged — only the index's internal
// layout is rebuilt).
func (t *Table) grow() {
	newCap := len(t.entries) * 2
	newIdx := localidx.New(newCap)
	for i := 0; i < t.n; i++ {
		newIdx.Put(key(t.ids[i]), uint32(i))
	}

	ids := make([]int32, newCap)
	copy(ids, t.ids)
	entries := make([]VWAP, newCap)
	copy(entries, t.entries)

	t.idx = newIdx
	t.ids = ids
	t.entries = entries
}

// Update folds one pseudo-trade into the accumulator for instrumentID.
func (t *Table) Update(instrumentID int32, price, qty float64) {
	t.slot(instrumentID).Update(price, qty)
}

// Snapshot returns a VWAP report for every instrument seen so far, in
// first-seen order.
func (t *Table) Snapshot() []Report {
	reports := make([]Report, t.n)
	for i := 0; i < t.n; i++ {
		reports[i] = Report{
			InstrumentID: t.ids[i],
			VWAP:         t.entries[i].Value(),
			Trades:       t.entries[i].Trades,
		}
	}
	return reports
}

// Len returns the number of distinct instruments tracked so far.
func (t *Table) Len() int {
	return t.n
}
