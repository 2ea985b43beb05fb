// affinity_stub.go — no-op CPU pinning for platforms without
// sched_setaffinity(2), mirroring ring24/setaffinity_stub.go.

//go:build !linux

package consumer

// pin is a no-op outside Linux; the consumer runs unpinned.
func pin(core int) {}
