package bollywood

import "github.com/google/uuid"

// --- System Messages ---

// Started is sent to an actor after its goroutine has started.
type Started struct{}

// Stopping is delivered once the actor has been asked to terminate.
// No more user messages will be delivered after Stopping.
type Stopping struct{}

// Stopped is the final message an actor receives before its goroutine exits.
type Stopped struct{}

// WatchRef identifies one liveness watch.
type WatchRef string

func newWatchRef() WatchRef {
	return WatchRef(uuid.NewString())
}

// Terminated is delivered to a watcher when the watched actor ends, for any
// reason. Reason is nil for a normal exit.
type Terminated struct {
	Ref    WatchRef
	Who    *PID
	Reason error
}

// Exit is delivered to an actor that traps exits when a linked actor
// terminates or when an exit signal is sent to it with Engine.Exit.
// From is nil for signals that do not originate from an actor.
type Exit struct {
	From   *PID
	Reason error
}

// --- Message Envelope ---

// messageEnvelope wraps a user message with sender information.
type messageEnvelope struct {
	Sender    *PID
	Message   interface{}
	RequestID string
}

func isSystemMessage(message interface{}) bool {
	switch message.(type) {
	case Started, Stopping, Stopped, Terminated, Exit:
		return true
	default:
		return false
	}
}
