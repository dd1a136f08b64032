package bollywood

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
)

const defaultMailboxSize = 1024

// process represents the running instance of an actor, including its state and mailbox.
type process struct {
	engine  *Engine
	pid     *PID
	actor   Actor
	mailbox chan *messageEnvelope
	props   *Props

	stopCh   chan struct{} // Closed once termination is requested
	stopOnce sync.Once
	exiting  atomic.Bool

	mu       sync.Mutex // Protects the fields below
	reason   error
	dead     bool
	links    map[string]*PID
	watchers map[WatchRef]watcher
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:   engine,
		pid:      pid,
		props:    props,
		mailbox:  make(chan *messageEnvelope, defaultMailboxSize),
		stopCh:   make(chan struct{}),
		links:    make(map[string]*PID),
		watchers: make(map[WatchRef]watcher),
	}
}

// sendMessage enqueues an envelope without blocking. User messages are
// dropped once the actor is terminating.
func (p *process) sendMessage(envelope *messageEnvelope) {
	if p.exiting.Load() {
		return
	}

	select {
	case p.mailbox <- envelope:
	default:
		p.engine.log.Warnw("mailbox full, dropping message", "actor", p.pid.String(), "message", typeName(envelope.Message))
	}
}

// terminate records the exit reason (first one wins) and stops the run loop.
func (p *process) terminate(reason error) {
	p.mu.Lock()
	if p.exiting.Load() {
		p.mu.Unlock()
		return
	}
	p.reason = reason
	p.exiting.Store(true)
	p.mu.Unlock()

	p.stopOnce.Do(func() { close(p.stopCh) })
}

func (p *process) exitReason() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

func (p *process) isDead() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dead || p.exiting.Load()
}

// addLink records a link unless the actor is already gone.
func (p *process) addLink(pid *PID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return false
	}
	p.links[pid.ID] = pid
	return true
}

func (p *process) removeLink(pid *PID) {
	p.mu.Lock()
	delete(p.links, pid.ID)
	p.mu.Unlock()
}

// addWatcher registers w unless the actor is already dead, in which case
// the caller must notify immediately.
func (p *process) addWatcher(ref WatchRef, w watcher) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return false
	}
	p.watchers[ref] = w
	return true
}

func (p *process) removeWatcher(ref WatchRef) {
	p.mu.Lock()
	delete(p.watchers, ref)
	p.mu.Unlock()
}

// run is the main loop for the actor process.
func (p *process) run() {
	defer p.finish()

	defer func() {
		if r := recover(); r != nil {
			p.crash(r)
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		panic("producer returned nil actor")
	}

	for {
		select {
		case <-p.stopCh:
			return

		case envelope := <-p.mailbox:
			// A terminating actor never handles another message.
			if p.exiting.Load() {
				return
			}
			p.invokeReceive(envelope)
			if p.exiting.Load() {
				return
			}
		}
	}
}

// crash logs a panic and terminates the actor with a PanicError reason.
func (p *process) crash(r interface{}) {
	stack := debug.Stack()
	p.engine.log.Errorw("actor panicked", "actor", p.pid.String(), "panic", r, "stack", string(stack))
	p.terminate(&PanicError{Value: r, Stack: stack})
}

// finish runs the final lifecycle messages and notifies links and watchers.
func (p *process) finish() {
	p.terminate(nil) // no-op when a reason was already recorded
	reason := p.exitReason()

	if p.actor != nil {
		p.safeInvoke(Stopping{})
		p.safeInvoke(Stopped{})
	}

	p.mu.Lock()
	p.dead = true
	links := p.links
	watchers := p.watchers
	p.links = make(map[string]*PID)
	p.watchers = make(map[WatchRef]watcher)
	p.mu.Unlock()

	p.engine.remove(p.pid)

	for ref, w := range watchers {
		w.notify(p.engine, p.pid, ref, reason)
	}
	for _, linked := range links {
		p.engine.propagateExit(p.pid, linked, reason)
	}
}

// safeInvoke delivers a lifecycle message, swallowing panics.
func (p *process) safeInvoke(msg interface{}) {
	defer func() {
		if r := recover(); r != nil {
			p.engine.log.Errorw("actor panicked during lifecycle message", "actor", p.pid.String(), "message", typeName(msg), "panic", r)
		}
	}()
	p.actor.Receive(&context{engine: p.engine, self: p.pid, message: msg})
}

// invokeReceive calls the actor's Receive method. A panic crashes the actor.
func (p *process) invokeReceive(envelope *messageEnvelope) {
	ctx := &context{
		engine:    p.engine,
		self:      p.pid,
		sender:    envelope.Sender,
		message:   envelope.Message,
		requestID: envelope.RequestID,
	}

	defer func() {
		if r := recover(); r != nil {
			p.crash(r)
		}
	}()
	p.actor.Receive(ctx)
}
