package reminder

import (
	"fmt"
	"time"
)

// MaxDelay is the longest delay a timer accepts: 2^32-1 milliseconds,
// a little under 50 days.
const MaxDelay = time.Duration(1<<32-1) * time.Millisecond

// ResolveDeadline converts an absolute deadline into a delay from now in
// whole seconds. Deadlines in the past resolve to zero.
func ResolveDeadline(now, deadline time.Time) time.Duration {
	return ClampDelay(deadline.Sub(now).Truncate(time.Second))
}

// ClampDelay maps negative delays to zero.
func ClampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// ValidateDelay rejects delays the coordinator will not schedule.
func ValidateDelay(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrBadTimeout, d)
	}
	if d > MaxDelay {
		return fmt.Errorf("%w: %s > %s", ErrDelayTooLong, d, MaxDelay)
	}
	return nil
}
