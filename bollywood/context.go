package bollywood

import "time"

// Context provides information and capabilities to an Actor during message processing.
type Context interface {
	// Engine returns the Actor Engine managing this actor.
	Engine() *Engine
	// Self returns the PID of the actor processing the message.
	Self() *PID
	// Sender returns the PID of the actor that sent the message, if available.
	Sender() *PID
	// Message returns the actual message being processed.
	Message() interface{}
	// RequestID returns the correlation token of an Ask, or "" for plain sends.
	RequestID() string
	// Reply answers the Ask that delivered the current message.
	Reply(response interface{})
	// Spawn starts a detached actor.
	Spawn(props *Props) *PID
	// SpawnLinked starts an actor linked to this one.
	SpawnLinked(props *Props) *PID
	// Watch monitors target; a Terminated message arrives when it ends.
	Watch(target *PID) WatchRef
	// Unwatch removes a watch created with Watch.
	Unwatch(target *PID, ref WatchRef)
	// Ask sends a request to target with this actor as sender and waits for the reply.
	Ask(target *PID, message interface{}, timeout time.Duration) (interface{}, error)
}

// context implements the Context interface.
type context struct {
	engine    *Engine
	self      *PID
	sender    *PID
	message   interface{}
	requestID string
}

func (c *context) Engine() *Engine      { return c.engine }
func (c *context) Self() *PID           { return c.self }
func (c *context) Sender() *PID         { return c.sender }
func (c *context) Message() interface{} { return c.message }
func (c *context) RequestID() string    { return c.requestID }

func (c *context) Reply(response interface{}) {
	if c.requestID == "" {
		c.engine.log.Warnw("reply without a pending request", "actor", c.self.String(), "message", typeName(c.message))
		return
	}
	c.engine.deliverReply(c.requestID, response)
}

func (c *context) Spawn(props *Props) *PID {
	return c.engine.Spawn(props)
}

func (c *context) SpawnLinked(props *Props) *PID {
	return c.engine.SpawnLinked(c.self, props)
}

func (c *context) Watch(target *PID) WatchRef {
	return c.engine.Watch(c.self, target)
}

func (c *context) Unwatch(target *PID, ref WatchRef) {
	c.engine.Unwatch(target, ref)
}

func (c *context) Ask(target *PID, message interface{}, timeout time.Duration) (interface{}, error) {
	return c.engine.ask(c.self, target, message, timeout)
}
