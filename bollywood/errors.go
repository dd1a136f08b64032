package bollywood

import (
	"errors"
	"fmt"
)

var (
	// ErrShutdown is the exit reason of an intentional termination. It
	// propagates through links like any other abnormal reason.
	ErrShutdown = errors.New("shutdown")
	// ErrTimeout is returned by Ask when no reply arrives in time.
	ErrTimeout = errors.New("request timed out")
	// ErrTerminated is returned by Ask when the target ended before replying.
	ErrTerminated = errors.New("actor terminated")
	// ErrNoProcess is the reason reported for watches on actors that do not exist.
	ErrNoProcess = errors.New("no such actor")
	// ErrNameTaken is returned by Register when the name belongs to a live actor.
	ErrNameTaken = errors.New("name already registered")
	// ErrEngineStopping is returned when the engine refuses new work.
	ErrEngineStopping = errors.New("engine is stopping")
)

// PanicError is the exit reason of an actor whose Receive panicked.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("actor panicked: %v", e.Value)
}
