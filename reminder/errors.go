package reminder

import "errors"

var (
	// ErrBadTimeout is returned when an event is added with a non-positive delay.
	ErrBadTimeout = errors.New("bad timeout")
	// ErrDelayTooLong is returned when a delay exceeds MaxDelay.
	ErrDelayTooLong = errors.New("delay exceeds maximum supported timeout")
	// ErrUnrecognized is the reply to requests the coordinator does not understand.
	ErrUnrecognized = errors.New("unrecognized message")
	// ErrUnavailable is returned when no coordinator is registered.
	ErrUnavailable = errors.New("coordinator unavailable")
	// ErrRestartLimit is the exit reason of a supervisor that gave up restarting.
	ErrRestartLimit = errors.New("restart limit exceeded")
)
