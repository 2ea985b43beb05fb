// affinity_linux.go — CPU core pinning via sched_setaffinity(2).
//
// Generalized from ring24/setaffinity_linux.go's raw SYS_SCHED_SETAFFINITY
// syscall into x/sys/unix's portable CPUSet wrapper.

//go:build linux

package consumer

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/quantflow/mdfeed/xlog"
)

// pin locks the calling goroutine to its OS thread and binds that thread
// to the given CPU core. Best-effort: a failed SchedSetaffinity call is
// logged, not fatal — the consumer still functions without it, just
// without NUMA/cache locality guarantees.
func pin(core int) {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		xlog.Drop("consumer: core pin failed", err)
	}
}
