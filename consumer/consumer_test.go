package consumer

import (
	"testing"

	"github.com/quantflow/mdfeed/metrics"
	"github.com/quantflow/mdfeed/quote"
	"github.com/quantflow/mdfeed/ring"
)

// TestConsumerDrainsAndStops pushes a handful of quotes straight onto the
// ring with running already false, and confirms Run drains the ring and
// returns: after join the ring is empty and processed equals the number of
// quotes popped (no producer runs, so received stays 0).
func TestConsumerDrainsAndStops(t *testing.T) {
	r := ring.New(4)
	m := &metrics.Metrics{}

	const n = 3
	for i := int64(0); i < n; i++ {
		r.Push(quote.Quote{BidPx: float64(i), AskPx: float64(i) + 1, TsNs: i, InstrumentID: 7, BidSz: 2, AskSz: 4})
	}

	running := false // already stopped; consumer should just drain and return
	c := New(r, m, 4, func() bool { return running }, Options{Core: -1})
	c.Run()

	if !r.Empty() {
		t.Fatalf("ring not drained: size=%d", r.Size())
	}
	if got := m.Load().MessagesProcessed; got != n {
		t.Fatalf("processed = %d, want %d", got, n)
	}

	reports := c.stats.Snapshot()
	if len(reports) != 1 || reports[0].InstrumentID != 7 {
		t.Fatalf("unexpected stats snapshot: %+v", reports)
	}
	if reports[0].Trades != n {
		t.Fatalf("trades = %d, want %d", reports[0].Trades, n)
	}
}

// TestConsumerAccumulatesMidpointVWAP checks the pseudo-trade derivation:
// qty = (bid_sz+ask_sz)/2, price = (bid_px+ask_px)/2.
func TestConsumerAccumulatesMidpointVWAP(t *testing.T) {
	r := ring.New(4)
	m := &metrics.Metrics{}
	r.Push(quote.Quote{BidPx: 100, AskPx: 102, BidSz: 2, AskSz: 2, InstrumentID: 1})

	c := New(r, m, 1, func() bool { return false }, Options{Core: -1})
	c.Run()

	reports := c.stats.Snapshot()
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	// mid = 101, qty = 2 -> vwap = 101
	if reports[0].VWAP != 101 {
		t.Fatalf("vwap = %v, want 101", reports[0].VWAP)
	}
}
