package reminder

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/logger"
	"github.com/lguibr/reminders/utils"
)

// CoordinatorName is the registry name the supervisor publishes the
// coordinator under.
const CoordinatorName = "reminders.coordinator"

// EventRecord is one pending event.
type EventRecord struct {
	Name        string
	Description string
	Timer       *bollywood.PID
	Timeout     time.Duration
	FiresAt     time.Time
}

// SubscriberRecord is one subscribed observer and the watch that tracks it.
type SubscriberRecord struct {
	Ref     bollywood.WatchRef
	Address *bollywood.PID
}

// CoordinatorActor owns every pending event and every subscriber. All
// state transitions happen inside Receive, one message at a time, so the
// maps need no lock.
type CoordinatorActor struct {
	cfg     utils.Config
	metrics *Metrics
	now     func() time.Time

	events      map[string]*EventRecord
	subscribers map[bollywood.WatchRef]*SubscriberRecord

	selfPID *bollywood.PID
	log     *zap.SugaredLogger
}

// NewCoordinatorProducer creates a producer for the CoordinatorActor.
// Every produced instance starts with empty state.
func NewCoordinatorProducer(cfg utils.Config, metrics *Metrics) bollywood.Producer {
	return func() bollywood.Actor {
		return &CoordinatorActor{
			cfg:         cfg,
			metrics:     metrics,
			now:         time.Now,
			events:      make(map[string]*EventRecord),
			subscribers: make(map[bollywood.WatchRef]*SubscriberRecord),
			log:         logger.Named("coordinator"),
		}
	}
}

// Receive Method
func (a *CoordinatorActor) Receive(ctx bollywood.Context) {
	if a.selfPID == nil {
		a.selfPID = ctx.Self()
		a.log = a.log.With("pid", a.selfPID.String())
	}

	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		a.log.Info("coordinator started")

	case SubscribeRequest:
		a.handleSubscribe(ctx, msg)

	case AddEventRequest:
		a.handleAddEvent(ctx, msg)

	case CancelEventRequest:
		a.handleCancelEvent(ctx, msg)

	case ListEventsRequest:
		a.handleListEvents(ctx)

	case ShutdownCommand:
		a.log.Info("shutdown requested")
		ctx.Engine().Kill(a.selfPID, bollywood.ErrShutdown)

	case EventCompleted:
		a.handleEventCompleted(ctx, msg)

	case bollywood.Terminated:
		a.handleSubscriberDown(msg)

	case bollywood.Stopping:
		a.log.Infow("coordinator stopping", "pending_events", len(a.events))
		// Timers are linked and die with an abnormal exit; a normal stop
		// must release them explicitly.
		for _, record := range a.events {
			ctx.Engine().Stop(record.Timer)
		}
		a.events = make(map[string]*EventRecord)
		a.subscribers = make(map[bollywood.WatchRef]*SubscriberRecord)

	case bollywood.Stopped:
		a.log.Info("coordinator stopped")

	default:
		a.log.Warnf("unknown message %T", msg)
		if ctx.RequestID() != "" {
			ctx.Reply(fmt.Errorf("%w: %T", ErrUnrecognized, msg))
		}
	}

	a.metrics.observe(len(a.events), len(a.subscribers))
}

// reply answers an Ask, or sends the response back to the sender of a plain message.
func reply(ctx bollywood.Context, response interface{}) {
	if ctx.RequestID() != "" {
		ctx.Reply(response)
		return
	}
	if ctx.Sender() != nil {
		ctx.Engine().Send(ctx.Sender(), response, ctx.Self())
	}
}
