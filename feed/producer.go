// producer.go — pulls records from a RecordSource, converts them to
// quote.Quote, and pushes them onto the ring.
//
// Lifecycle grounded on original_source/src/DatabentoHandler.cpp: start
// launches a worker and sets the fetching flag only once the worker has
// begun (StartAsyncFetch's ordering), stop clears the flag and joins, and
// a fetch always resets metrics before pulling the first record
// (FetchHistoricalBBO's metrics_.Reset()). Schema validation happens
// before any network call, matching the original's early throw on an
// unrecognized schema string.

package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quantflow/mdfeed/metrics"
	"github.com/quantflow/mdfeed/quote"
	"github.com/quantflow/mdfeed/ring"
)

// errStopped is returned by the record callback to unwind FetchRange when
// Stop is called mid-fetch; it is never surfaced to the error sink.
var errStopped = errors.New("feed: stop requested")

// Producer drains a RecordSource onto a ring, tracking receive/overrun
// metrics along the way.
type Producer struct {
	source RecordSource
	ring   *ring.Ring
	metric *metrics.Metrics

	errSink  atomic.Pointer[func(string)]
	fetching atomic.Bool
	wg       sync.WaitGroup
}

// NewProducer builds a producer that pulls from source and pushes onto r,
// recording outcomes in m.
func NewProducer(source RecordSource, r *ring.Ring, m *metrics.Metrics) *Producer {
	return &Producer{source: source, ring: r, metric: m}
}

// SetErrorSink installs fn as the callback for recoverable errors and
// throttled overflow notices. Must be set before Start is first called;
// unsynchronized relative to an in-flight fetch if changed later.
func (p *Producer) SetErrorSink(fn func(string)) {
	if fn == nil {
		p.errSink.Store(nil)
		return
	}
	p.errSink.Store(&fn)
}

// IsFetching reports whether a fetch worker is currently active.
func (p *Producer) IsFetching() bool {
	return p.fetching.Load()
}

// Start spawns the fetch worker for params. If a fetch is already running,
// Start reports "already fetching" via the error sink and returns without
// starting a new one. Otherwise it stops any prior worker (idempotent,
// since none should exist in normal use) before launching the new one.
func (p *Producer) Start(ctx context.Context, params FetchParams) {
	if p.fetching.Load() {
		p.emit("already fetching data")
		return
	}
	p.Stop()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.fetching.Store(true)
		defer p.fetching.Store(false)

		if err := p.Fetch(ctx, params); err != nil && !errors.Is(err, errStopped) {
			p.emit(fmt.Sprintf("failed to fetch historical data: %v", err))
		}
	}()
}

// Stop clears the fetching flag and joins the worker, if any. Idempotent.
func (p *Producer) Stop() {
	p.fetching.Store(false)
	p.wg.Wait()
}

// Fetch runs one fetch synchronously on the calling goroutine, useful for
// tests and for Start's worker alike. It resets metrics before pulling the
// first record and rejects unsupported schemas before any network call.
func (p *Producer) Fetch(ctx context.Context, params FetchParams) error {
	if params.Schema != "bbo-1s" && params.Schema != "bbo-1m" {
		return fmt.Errorf("unsupported schema: %s", params.Schema)
	}

	p.metric.Reset()
	p.fetching.Store(true)
	defer p.fetching.Store(false)

	return p.fetch(ctx, params)
}

func (p *Producer) fetch(ctx context.Context, params FetchParams) error {
	err := p.source.FetchRange(ctx, params, func(SymbolMap) {}, p.handleRecord)
	if errors.Is(err, errStopped) {
		return nil
	}
	return err
}

func (p *Producer) handleRecord(rec Record) error {
	if !p.fetching.Load() {
		return errStopped
	}
	if rec.Schema != "bbo-1s" && rec.Schema != "bbo-1m" {
		return nil
	}

	q := quote.Quote{
		BidPx:        quote.ConvertPrice(rec.Level.BidPx),
		AskPx:        quote.ConvertPrice(rec.Level.AskPx),
		TsNs:         rec.TsRecvNs,
		InstrumentID: rec.InstrumentID,
		BidSz:        rec.Level.BidSz,
		AskSz:        rec.Level.AskSz,
	}

	start := time.Now()
	if p.ring.Push(q) {
		p.metric.RecordPush(uint64(time.Since(start).Nanoseconds()))
		return nil
	}

	overruns := p.metric.RecordOverrun()
	if overruns%1000 == 1 {
		p.emit(fmt.Sprintf("queue overrun detected, utilization %.1f%%", p.ring.Utilization()*100))
	}
	return nil
}

func (p *Producer) emit(msg string) {
	if sink := p.errSink.Load(); sink != nil && *sink != nil {
		(*sink)(msg)
	}
}
