package cache

import (
	"fmt"
	"time"
)

// Policy selects how the cache is kept fresh.
type Policy string

const (
	// PolicyManual refreshes only on RefreshNow.
	PolicyManual Policy = "manual"
	// PolicyPeriodicTimer arms a one-shot timer after each refresh.
	PolicyPeriodicTimer Policy = "periodic_timer"
	// PolicyPeriodicLoop runs a single task that refreshes and sleeps.
	PolicyPeriodicLoop Policy = "periodic_loop"

	DefaultInterval = 5 * time.Minute
)

// ParsePolicy maps a flag value to a Policy. Empty selects PolicyPeriodicTimer.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyManual, PolicyPeriodicTimer, PolicyPeriodicLoop:
		return Policy(s), nil
	case "":
		return PolicyPeriodicTimer, nil
	}
	return "", fmt.Errorf("unknown refresh policy %q (want %s, %s or %s)", s, PolicyManual, PolicyPeriodicTimer, PolicyPeriodicLoop)
}

// Config configures a LastPointCache.
type Config struct {
	Policy   Policy
	Interval time.Duration
}
