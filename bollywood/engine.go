package bollywood

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lguibr/reminders/logger"
)

// Engine manages the lifecycle and message dispatching for actors.
type Engine struct {
	pidCounter uint64
	actors     map[string]*process
	names      map[string]*PID
	mu         sync.RWMutex // Protects the actors and names maps
	stopping   atomic.Bool  // Indicates if the engine is shutting down

	pending   map[string]chan interface{} // Outstanding Ask replies by request ID
	pendingMu sync.Mutex

	log *zap.SugaredLogger
}

// NewEngine creates a new actor engine.
func NewEngine() *Engine {
	return &Engine{
		actors:  make(map[string]*process),
		names:   make(map[string]*PID),
		pending: make(map[string]chan interface{}),
		log:     logger.Named("bollywood"),
	}
}

// nextPID generates a unique process ID.
func (e *Engine) nextPID() *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	return &PID{ID: fmt.Sprintf("actor-%d", id)}
}

// Spawn creates and starts a new actor based on the provided Props.
// It returns the PID of the newly created actor, or nil while the engine is stopping.
func (e *Engine) Spawn(props *Props) *PID {
	if e.stopping.Load() {
		e.log.Warn("engine is stopping, cannot spawn new actors")
		return nil
	}

	pid := e.nextPID()
	proc := newProcess(e, pid, props)

	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	e.start(proc)
	return pid
}

// SpawnLinked creates an actor linked to parent: when either terminates
// abnormally the other receives the exit signal. It returns nil when the
// parent is already gone.
func (e *Engine) SpawnLinked(parent *PID, props *Props) *PID {
	if e.stopping.Load() {
		e.log.Warn("engine is stopping, cannot spawn new actors")
		return nil
	}

	parentProc := e.lookup(parent)
	if parentProc == nil {
		e.log.Warnw("cannot link to missing parent", "parent", parent.String())
		return nil
	}

	pid := e.nextPID()
	proc := newProcess(e, pid, props)
	proc.links[parent.ID] = parent

	// The child must be visible before the parent can propagate its exit.
	e.mu.Lock()
	e.actors[pid.ID] = proc
	e.mu.Unlock()

	if !parentProc.addLink(pid) {
		e.remove(pid)
		e.log.Warnw("parent terminated before child could be linked", "parent", parent.String())
		return nil
	}

	e.start(proc)
	return pid
}

func (e *Engine) start(proc *process) {
	go proc.run()

	e.Send(proc.pid, Started{}, nil)
}

// Send delivers a message to the actor identified by the PID.
// sender can be nil if the message originates from outside the actor system.
func (e *Engine) Send(pid *PID, message interface{}, sender *PID) {
	e.send(pid, &messageEnvelope{Sender: sender, Message: message})
}

func (e *Engine) send(pid *PID, envelope *messageEnvelope) {
	if pid == nil {
		return
	}
	if e.stopping.Load() && !isSystemMessage(envelope.Message) {
		return
	}

	if proc := e.lookup(pid); proc != nil {
		proc.sendMessage(envelope)
	}
}

// Stop terminates an actor normally. Linked actors are not affected unless
// they trap exits.
func (e *Engine) Stop(pid *PID) {
	e.Kill(pid, nil)
}

// Kill terminates an actor with the given reason, even if it traps exits.
func (e *Engine) Kill(pid *PID, reason error) {
	if proc := e.lookup(pid); proc != nil {
		proc.terminate(reason)
	}
}

// Exit sends an exit signal to pid. Actors trapping exits receive it as an
// Exit message; any other actor terminates with reason.
func (e *Engine) Exit(pid *PID, reason error) {
	proc := e.lookup(pid)
	if proc == nil {
		return
	}
	if proc.props.TrapsExit() {
		proc.sendMessage(&messageEnvelope{Message: Exit{Reason: reason}})
		return
	}
	proc.terminate(reason)
}

// IsAlive reports whether pid refers to an actor that has not terminated.
func (e *Engine) IsAlive(pid *PID) bool {
	proc := e.lookup(pid)
	return proc != nil && !proc.isDead()
}

func (e *Engine) lookup(pid *PID) *process {
	if pid == nil {
		return nil
	}
	e.mu.RLock()
	proc := e.actors[pid.ID]
	e.mu.RUnlock()
	return proc
}

// remove removes an actor process from the engine's tracking and drops
// any registered name pointing at it.
func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	delete(e.actors, pid.ID)
	for name, registered := range e.names {
		if registered.ID == pid.ID {
			delete(e.names, name)
		}
	}
	e.mu.Unlock()
}

// propagateExit delivers the exit of from to a linked actor.
func (e *Engine) propagateExit(from, to *PID, reason error) {
	proc := e.lookup(to)
	if proc == nil {
		return
	}
	proc.removeLink(from)

	if proc.props.TrapsExit() {
		proc.sendMessage(&messageEnvelope{Sender: from, Message: Exit{From: from, Reason: reason}})
		return
	}
	if reason != nil {
		proc.terminate(reason)
	}
}

// Shutdown stops all actors and waits for them to terminate gracefully.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		e.log.Debug("engine already shutting down")
		return
	}

	e.mu.RLock()
	pidsToStop := make([]*PID, 0, len(e.actors))
	for _, proc := range e.actors {
		pidsToStop = append(pidsToStop, proc.pid)
	}
	e.mu.RUnlock()

	e.log.Debugw("engine shutdown initiated", "actors", len(pidsToStop))
	for _, pid := range pidsToStop {
		e.Kill(pid, ErrShutdown)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e.mu.RLock()
		remaining := len(e.actors)
		e.mu.RUnlock()
		if remaining == 0 {
			e.log.Debug("all actors stopped")
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	e.mu.Lock()
	if remaining := len(e.actors); remaining > 0 {
		stuck := make([]string, 0, remaining)
		for id := range e.actors {
			stuck = append(stuck, id)
		}
		e.log.Warnw("engine shutdown timeout", "remaining", stuck)
		e.actors = make(map[string]*process)
		e.names = make(map[string]*PID)
	}
	e.mu.Unlock()
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
