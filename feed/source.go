// source.go — the external collaborator contract.
//
// RecordSource stands in for the upstream market-data SDK (out of scope
// per the core's charter): something that, given a replay window, calls
// back once with a symbol map and then once per record until the window
// is exhausted or an error occurs.

package feed

import "context"

// FetchParams describes one replay request.
type FetchParams struct {
	Dataset string
	Symbols []string
	Start   string // ISO-8601
	End     string // ISO-8601
	Schema  string // "bbo-1s" or "bbo-1m"
}

// Level is top-of-book state for both sides of the market, prices at the
// upstream's fixed-point scale (quote.PriceScale).
type Level struct {
	BidPx int64
	AskPx int64
	BidSz uint32
	AskSz uint32
}

// Record is one upstream row. Only BBO-schema records carry a populated
// Level; everything else is ignored by the producer.
type Record struct {
	Schema       string
	TsRecvNs     int64
	InstrumentID int32
	Level        Level
}

// SymbolMap maps the upstream's dense instrument id to its human symbol.
// Informational only — the producer keys everything off InstrumentID.
type SymbolMap map[int32]string

// RecordFunc handles one record. Returning a non-nil error aborts the
// fetch; the source surfaces that error to its caller unchanged.
type RecordFunc func(Record) error

// SymbolMapFunc receives the symbol map exactly once, before the first
// record.
type SymbolMapFunc func(SymbolMap)

// RecordSource fetches a replay window and streams it through callbacks.
// FetchRange blocks until the window is exhausted, ctx is canceled, or a
// callback returns an error.
type RecordSource interface {
	FetchRange(ctx context.Context, params FetchParams, onSymbolMap SymbolMapFunc, onRecord RecordFunc) error
}
