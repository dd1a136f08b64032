package reminder

import (
	"time"

	"go.uber.org/zap"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/logger"
)

const listenerBuffer = 256

// Listener collects completion notifications for callers that are not
// actors themselves.
type Listener struct {
	engine        *bollywood.Engine
	pid           *bollywood.PID
	notifications chan EventNotification
}

// collectorActor forwards notifications to the Listener channel.
type collectorActor struct {
	out chan<- EventNotification
	log *zap.SugaredLogger
}

func (a *collectorActor) Receive(ctx bollywood.Context) {
	if msg, ok := ctx.Message().(EventNotification); ok {
		select {
		case a.out <- msg:
		default:
			a.log.Warnw("listener buffer full, dropping notification", "event", msg.Name, "capacity", cap(a.out))
		}
	}
}

// NewListener spawns a collector actor and subscribes it.
func (c *Client) NewListener() (*Listener, error) {
	notifications := make(chan EventNotification, listenerBuffer)
	pid := c.engine.Spawn(bollywood.NewProps(func() bollywood.Actor {
		return &collectorActor{out: notifications, log: logger.Named("listener")}
	}))
	if pid == nil {
		return nil, bollywood.ErrEngineStopping
	}

	if _, err := c.Subscribe(pid); err != nil {
		c.engine.Stop(pid)
		return nil, err
	}

	return &Listener{engine: c.engine, pid: pid, notifications: notifications}, nil
}

// PID returns the address of the collector actor.
func (l *Listener) PID() *bollywood.PID {
	return l.pid
}

// Listen returns every notification received until maxWait elapses.
func (l *Listener) Listen(maxWait time.Duration) []EventNotification {
	var received []EventNotification

	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()

	for {
		select {
		case msg := <-l.notifications:
			received = append(received, msg)
		case <-deadline.C:
			return received
		}
	}
}

// Close stops the collector; the coordinator drops it through its watch.
func (l *Listener) Close() {
	l.engine.Stop(l.pid)
}
