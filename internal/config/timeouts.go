package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the cloud adapter's operational timeouts.
// These values can be customized via environment variables.
type Timeouts struct {
	ServerCreate      time.Duration // Timeout for server creation operations
	Delete            time.Duration // Timeout for all delete operations
	FloatingIP        time.Duration // Timeout for floating IP create and assign
	SSHDial           time.Duration // Timeout for a single SSH connection attempt
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - INCEPTION_TIMEOUT_SERVER_CREATE (default: 10m)
//   - INCEPTION_TIMEOUT_DELETE (default: 5m)
//   - INCEPTION_TIMEOUT_FLOATING_IP (default: 2m)
//   - INCEPTION_TIMEOUT_SSH_DIAL (default: 10s)
//   - HCLOUD_RETRY_MAX_ATTEMPTS (default: 5)
//   - HCLOUD_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      parseDuration("INCEPTION_TIMEOUT_SERVER_CREATE", 10*time.Minute),
		Delete:            parseDuration("INCEPTION_TIMEOUT_DELETE", 5*time.Minute),
		FloatingIP:        parseDuration("INCEPTION_TIMEOUT_FLOATING_IP", 2*time.Minute),
		SSHDial:           parseDuration("INCEPTION_TIMEOUT_SSH_DIAL", 10*time.Second),
		RetryMaxAttempts:  parseInt("HCLOUD_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("HCLOUD_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
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

// TestTimeouts returns short timeouts suitable for tests against fake APIs.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      5 * time.Second,
		Delete:            5 * time.Second,
		FloatingIP:        5 * time.Second,
		SSHDial:           time.Second,
		RetryMaxAttempts:  2,
		RetryInitialDelay: 10 * time.Millisecond,
	}
}
