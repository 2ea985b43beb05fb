package stats

import "testing"

// TestVWAPIdentity is scenario 5 from the spec: VWAP on
// [(100,10),(101,5),(99,15)] yields cum_px_qty=2980, cum_qty=30,
// vwap=99.333..., trades=3.
func TestVWAPIdentity(t *testing.T) {
	var v VWAP
	v.Update(100, 10)
	v.Update(101, 5)
	v.Update(99, 15)

	if v.CumPxQty != 2980 {
		t.Fatalf("cum_px_qty = %v, want 2980", v.CumPxQty)
	}
	if v.CumQty != 30 {
		t.Fatalf("cum_qty = %v, want 30", v.CumQty)
	}
	if v.Trades != 3 {
		t.Fatalf("trades = %d, want 3", v.Trades)
	}
	want := 2980.0 / 30.0
	if got := v.Value(); got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("vwap = %v, want %v", got, want)
	}
}

// TestVWAPZeroQty confirms VWAP is 0 with no accumulated quantity.
func TestVWAPZeroQty(t *testing.T) {
	var v VWAP
	if got := v.Value(); got != 0.0 {
		t.Fatalf("vwap on empty accumulator = %v, want 0", got)
	}
}

// TestTableGrowsAndTracksManyInstruments exercises the Robin-Hood index
// growth path by inserting more distinct instrument ids than the table's
// initial capacity.
func TestTableGrowsAndTracksManyInstruments(t *testing.T) {
	tbl := NewTable(4)
	const n = 50
	for i := int32(0); i < n; i++ {
		tbl.Update(i, float64(i), 1.0)
	}
	if tbl.Len() != n {
		t.Fatalf("len = %d, want %d", tbl.Len(), n)
	}

	reports := tbl.Snapshot()
	seen := make(map[int32]bool, n)
	for _, r := range reports {
		if r.Trades != 1 {
			t.Fatalf("instrument %d: trades = %d, want 1", r.InstrumentID, r.Trades)
		}
		if r.VWAP != float64(r.InstrumentID) {
			t.Fatalf("instrument %d: vwap = %v, want %v", r.InstrumentID, r.VWAP, r.InstrumentID)
		}
		seen[r.InstrumentID] = true
	}
	if len(seen) != n {
		t.Fatalf("saw %d distinct instruments, want %d", len(seen), n)
	}
}

// TestTableInstrumentZero ensures instrument id 0 (which collides with the
// Robin-Hood table's empty-slot sentinel at the raw key level) is handled
// via the +1 key offset rather than silently dropped.
func TestTableInstrumentZero(t *testing.T) {
	tbl := NewTable(4)
	tbl.Update(0, 10, 2)
	tbl.Update(0, 20, 2)

	reports := tbl.Snapshot()
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	if reports[0].Trades != 2 {
		t.Fatalf("trades = %d, want 2", reports[0].Trades)
	}
}
