// config.go — static run tunables and environment lookup.
//
// Generalized from the teacher's constants.go: same flat, grouped
// const/var layout with a short banner per group, but the groups now cover
// the market-data pipeline's dials instead of the WebSocket/dedup ones.

package config

import (
	"errors"
	"os"
)

// ───────────────────────────── Ring sizing ─────────────────────────────

const (
	// QueueSize is the ring's capacity in quotes. Must stay a power of two;
	// Ring.New panics otherwise.
	QueueSize = 1 << 20 // 1,048,576 slots
)

// ───────────────────────────── Replay window ─────────────────────────────

var (
	// Dataset identifies the upstream dataset to replay.
	Dataset = "GLBX.MDP3"

	// Symbols lists the instrument symbols included in the replay.
	Symbols = []string{"ES.FUT", "NQ.FUT"}

	// StartTime and EndTime bound the replay window, ISO-8601.
	StartTime = "2024-01-02T14:30:00Z"
	EndTime   = "2024-01-02T15:30:00Z"

	// Schema selects the upstream BBO cadence: "bbo-1s" or "bbo-1m".
	Schema = "bbo-1m"
)

// ───────────────────────────── Fetch behavior ─────────────────────────────

const (
	// FetchTimeoutSeconds bounds how long the orchestrator waits for the
	// producer to report idle before it gives up and starts the drain.
	FetchTimeoutSeconds = 30

	// DrainSeconds is the grace window given to the consumer after the
	// producer goes idle, to finish whatever is still in the ring.
	DrainSeconds = 5
)

// ───────────────────────────── Sample output ─────────────────────────────

const (
	// EnableSampleOutput turns on the consumer's periodic sample-record
	// print. Off by default — it's a debugging aid, not a report.
	EnableSampleOutput = false

	// SamplePrintEvery is the cadence, in processed records, of the sample
	// print when EnableSampleOutput is true.
	SamplePrintEvery = 1000
)

// ───────────────────────────── Environment ─────────────────────────────

// APIKeyEnvVar names the environment variable holding the upstream API key.
const APIKeyEnvVar = "DATABENTO_API_KEY"

// APIKey reads and validates DATABENTO_API_KEY, returning an error the
// caller should treat as a fatal startup condition.
func APIKey() (string, error) {
	key := os.Getenv(APIKeyEnvVar)
	if key == "" {
		return "", errors.New(APIKeyEnvVar + " environment variable not set or empty")
	}
	return key, nil
}
