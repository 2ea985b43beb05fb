// xlog.go — diagnostic printer for cold-path error and status messages.
//
// Generalized from the teacher's debug.DropError/debug.DropMessage: same
// "prefix: message" shape and the same restriction to cold paths (fetch
// errors, overrun notices, lifecycle transitions), but built on fmt/os
// rather than hand-rolled string concatenation, since nothing printed here
// runs per-quote — the ring and metrics layers never call into this
// package on the hot path.

package xlog

import (
	"fmt"
	"os"
	"time"
)

// Drop prints prefix and err (if non-nil) to the diagnostic stream,
// timestamped, matching debug.DropError's two-shape behavior.
func Drop(prefix string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", stamp(), prefix, err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", stamp(), prefix)
}

// Dropf prints a formatted diagnostic message, matching debug.DropMessage.
func Dropf(prefix, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s: %s\n", stamp(), prefix, fmt.Sprintf(format, args...))
}

func stamp() string {
	return "[" + time.Now().Format("15:04:05.000") + "]"
}
