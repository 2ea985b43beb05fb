// xcontrol.go — process-wide lifecycle flag.
//
// Generalized from the teacher's control.go hot/stop flag pair: that
// package tracks WebSocket activity plus a shutdown flag for pinned
// consumer cores. This package keeps only the shutdown half, widened from
// "per-core WebSocket traffic" to "whole-process run/stop", and backed by
// a real atomic.Bool rather than a plain uint32 — the orchestrator's
// signal handler and the producer/consumer worker loops run on different
// goroutines and the spec requires release/acquire visibility between
// them (spec.md §5, §9 "Global shutdown flag").

package xcontrol

import "sync/atomic"

var running atomic.Bool

// Start marks the process as running. Called once, before any worker
// observes the flag.
func Start() {
	running.Store(true)
}

// Running reports whether the process should keep working. Workers poll
// this instead of receiving a forced interrupt.
func Running() bool {
	return running.Load()
}

// Stop flips the flag to false. Safe to call from a signal handler or
// from the orchestrator itself; idempotent.
func Stop() {
	running.Store(false)
}
