package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the per-operation timeout and retry knobs. Create, update,
// and delete are bounded independently because a clone of a large template
// legitimately takes far longer than a config change.
type Timeouts struct {
	Create            time.Duration // Timeout for clone + initial configure + start
	Update            time.Duration // Timeout for in-place attribute updates
	Delete            time.Duration // Timeout for stop + delete
	TaskPoll          time.Duration // Interval between provider task status polls
	RetryMaxAttempts  int           // Attempt ceiling for transient failures
	RetryInitialDelay time.Duration // Initial backoff delay
}

// LoadTimeouts loads timeout configuration from environment variables.
// Unset or unparsable variables fall back to defaults.
//
// Environment Variables:
//   - PROXFLEET_TIMEOUT_CREATE (default: 10m)
//   - PROXFLEET_TIMEOUT_UPDATE (default: 2m)
//   - PROXFLEET_TIMEOUT_DELETE (default: 5m)
//   - PROXFLEET_TASK_POLL_INTERVAL (default: 2s)
//   - PROXFLEET_RETRY_MAX_ATTEMPTS (default: 5)
//   - PROXFLEET_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Create:            parseDuration("PROXFLEET_TIMEOUT_CREATE", 10*time.Minute),
		Update:            parseDuration("PROXFLEET_TIMEOUT_UPDATE", 2*time.Minute),
		Delete:            parseDuration("PROXFLEET_TIMEOUT_DELETE", 5*time.Minute),
		TaskPoll:          parseDuration("PROXFLEET_TASK_POLL_INTERVAL", 2*time.Second),
		RetryMaxAttempts:  parseInt("PROXFLEET_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("PROXFLEET_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// TestTimeouts returns short values suitable for tests.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		Create:            5 * time.Second,
		Update:            2 * time.Second,
		Delete:            2 * time.Second,
		TaskPoll:          10 * time.Millisecond,
		RetryMaxAttempts:  2,
		RetryInitialDelay: 10 * time.Millisecond,
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
