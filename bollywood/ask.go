package bollywood

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ask sends message to pid and blocks until the actor replies with
// Context.Reply, the actor terminates, or timeout elapses. A reply that is
// an error is returned as the error.
func (e *Engine) Ask(pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	return e.ask(nil, pid, message, timeout)
}

func (e *Engine) ask(sender, pid *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	if pid == nil {
		return nil, ErrNoProcess
	}
	if e.stopping.Load() {
		return nil, ErrEngineStopping
	}

	requestID := uuid.NewString()
	replyCh := make(chan interface{}, 1)

	e.pendingMu.Lock()
	e.pending[requestID] = replyCh
	e.pendingMu.Unlock()
	defer func() {
		e.pendingMu.Lock()
		delete(e.pending, requestID)
		e.pendingMu.Unlock()
	}()

	// The watch guarantees progress when the target is already gone.
	downCh := make(chan error, 1)
	ref := e.watch(pid, watcher{ch: downCh})
	defer e.Unwatch(pid, ref)

	e.send(pid, &messageEnvelope{Sender: sender, Message: message, RequestID: requestID})

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		return unwrapReply(reply)
	case reason := <-downCh:
		select {
		case reply := <-replyCh:
			return unwrapReply(reply)
		default:
		}
		return nil, fmt.Errorf("%w: %s exited (%v)", ErrTerminated, pid, reason)
	case <-timer.C:
		return nil, fmt.Errorf("ask %s with %s: %w", pid, typeName(message), ErrTimeout)
	}
}

func (e *Engine) deliverReply(requestID string, response interface{}) {
	e.pendingMu.Lock()
	replyCh, ok := e.pending[requestID]
	e.pendingMu.Unlock()
	if !ok {
		// The asker gave up already.
		return
	}

	select {
	case replyCh <- response:
	default:
		e.log.Warnw("duplicate reply dropped", "request_id", requestID)
	}
}

func unwrapReply(reply interface{}) (interface{}, error) {
	if err, ok := reply.(error); ok {
		return nil, err
	}
	return reply, nil
}
