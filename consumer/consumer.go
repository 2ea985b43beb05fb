// consumer.go — drains the ring, maintains per-instrument VWAP, and
// reports progress on a timer.
//
// The drain loop, 100µs empty-backoff, and 5-second status cadence are
// grounded on spec.md §4.E. The optional core pin is grounded on the
// teacher's ring24.PinnedConsumer / setaffinity_linux.go, generalized
// from a raw SYS_SCHED_SETAFFINITY syscall to golang.org/x/sys/unix's
// portable wrapper. The periodic sample-record print is restored from
// original_source/src/main.cpp's consumer_thread, gated the same way
// Config.hpp gates it (ENABLE_SAMPLE_OUTPUT / SAMPLE_PRINT_EVERY).

package consumer

import (
	"fmt"
	"time"

	"github.com/quantflow/mdfeed/metrics"
	"github.com/quantflow/mdfeed/quote"
	"github.com/quantflow/mdfeed/ring"
	"github.com/quantflow/mdfeed/stats"
	"github.com/quantflow/mdfeed/xlog"
)

const (
	emptyBackoff   = 100 * time.Microsecond
	reportInterval = 5 * time.Second
)

// Options configures a Consumer's optional, non-semantic behavior.
type Options struct {
	// Core pins the consumer goroutine to a CPU core via SchedSetaffinity.
	// A negative value leaves affinity untouched; the zero value pins to
	// core 0.
	Core int

	// EnableSampleOutput, when true, prints every SamplePrintEvery-th
	// processed quote to the diagnostic stream.
	EnableSampleOutput bool
	SamplePrintEvery   int
}

// Consumer drains a ring into per-instrument VWAP stats and periodic
// status reports. Not safe for concurrent use by more than one goroutine —
// its InstrumentStats table is single-owner by design (spec.md §4.C).
type Consumer struct {
	ring    *ring.Ring
	metric  *metrics.Metrics
	stats   *stats.Table
	opts    Options
	running func() bool
}

// New builds a Consumer draining r into m and an instrument table sized
// for roughly statsHint distinct instruments. running is polled whenever a
// pop finds the ring empty; the drain loop exits once running() is false
// and the ring is empty.
func New(r *ring.Ring, m *metrics.Metrics, statsHint int, running func() bool, opts Options) *Consumer {
	return &Consumer{
		ring:    r,
		metric:  m,
		stats:   stats.NewTable(statsHint),
		opts:    opts,
		running: running,
	}
}

// Run drains the ring until running() reports false and the ring is
// empty, reporting status every 5 seconds and printing sample records if
// configured. It returns once drained; callers typically run it in its
// own goroutine and join it via a WaitGroup or channel.
func (c *Consumer) Run() {
	if c.opts.Core >= 0 {
		pin(c.opts.Core)
	}

	var processed int
	lastReport := time.Now()

	for {
		q, ok := c.ring.Pop()
		if ok {
			c.metric.RecordPop()
			c.accumulate(q)
			processed++

			if c.opts.EnableSampleOutput && c.opts.SamplePrintEvery > 0 && processed%c.opts.SamplePrintEvery == 0 {
				c.printSample(q)
			}
		} else {
			c.metric.RecordUnderrun()
			if !c.running() && c.ring.Empty() {
				c.finalReport()
				return
			}
			time.Sleep(emptyBackoff)
		}

		if time.Since(lastReport) >= reportInterval {
			c.report()
			lastReport = time.Now()
		}
	}
}

// accumulate folds one quote into its instrument's VWAP as a pseudo-trade:
// qty = (bid_sz + ask_sz) / 2, price = midpoint.
func (c *Consumer) accumulate(q quote.Quote) {
	qty := float64(q.BidSz+q.AskSz) / 2
	mid := (q.BidPx + q.AskPx) / 2
	c.stats.Update(q.InstrumentID, mid, qty)
}

func (c *Consumer) report() {
	snap := c.metric.Load()
	xlog.Dropf("consumer", "processed=%d ring_size=%d util=%.1f%% received=%d overruns=%d avg_latency_ns=%d push_success=%.3f",
		snap.MessagesProcessed, c.ring.Size(), c.ring.Utilization()*100,
		snap.MessagesReceived, snap.BufferOverruns, snap.AvgLatencyNs(), snap.PushSuccessRate())

	for _, r := range c.stats.Snapshot() {
		xlog.Dropf("consumer", "instrument=%d vwap=%.6f trades=%d", r.InstrumentID, r.VWAP, r.Trades)
	}
}

func (c *Consumer) finalReport() {
	xlog.Drop("consumer: drain complete, final VWAP summary", nil)
	c.report()
}

func (c *Consumer) printSample(q quote.Quote) {
	fmt.Printf("sample instrument=%d ts_ns=%d bid=%.6f ask=%.6f bid_sz=%d ask_sz=%d\n",
		q.InstrumentID, q.TsNs, q.BidPx, q.AskPx, q.BidSz, q.AskSz)
}
