package reminder

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/logger"
)

// TimerActor owns the countdown of one event. Its state never changes after
// creation: it waits for either a cancel from its owner or the expiry of
// its delay, acts on whichever comes first, and terminates.
type TimerActor struct {
	owner *bollywood.PID
	name  string
	delay time.Duration

	timer *time.Timer
	log   *zap.SugaredLogger
}

// timerExpired is sent by the armed time.Timer to the actor itself.
type timerExpired struct{}

// NewTimerActorProducer creates a Producer for a TimerActor reporting to owner.
// Negative delays are clamped to zero, which fires as soon as the actor starts.
func NewTimerActorProducer(owner *bollywood.PID, name string, delay time.Duration) bollywood.Producer {
	return func() bollywood.Actor {
		return &TimerActor{
			owner: owner,
			name:  name,
			delay: ClampDelay(delay),
			log:   logger.Named("timer").With("event", name),
		}
	}
}

// SpawnTimer starts a detached timer that keeps running if owner terminates.
func SpawnTimer(engine *bollywood.Engine, owner *bollywood.PID, name string, delay time.Duration) *bollywood.PID {
	return engine.Spawn(bollywood.NewProps(NewTimerActorProducer(owner, name, delay)))
}

// SpawnLinkedTimer starts a timer linked to the actor of ctx, so that it
// terminates together with its owner.
func SpawnLinkedTimer(ctx bollywood.Context, name string, delay time.Duration) *bollywood.PID {
	return ctx.SpawnLinked(bollywood.NewProps(NewTimerActorProducer(ctx.Self(), name, delay)))
}

func (a *TimerActor) Receive(ctx bollywood.Context) {
	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		if a.delay <= 0 {
			a.fire(ctx)
			return
		}
		engine, self := ctx.Engine(), ctx.Self()
		a.timer = time.AfterFunc(a.delay, func() {
			engine.Send(self, timerExpired{}, nil)
		})

	case timerExpired:
		a.fire(ctx)

	case CancelTimer:
		if !a.owner.Equal(ctx.Sender()) {
			a.log.Debugw("ignoring cancel from foreign sender", "sender", ctx.Sender().String())
			return
		}
		a.stopTimer()
		if ctx.RequestID() != "" {
			ctx.Reply(TimerCancelled{})
		} else {
			ctx.Engine().Send(ctx.Sender(), TimerCancelled{}, ctx.Self())
		}
		ctx.Engine().Stop(ctx.Self())

	case bollywood.Stopping:
		a.stopTimer()

	case bollywood.Stopped:

	default:
		a.log.Warnf("unknown message %T", msg)
	}
}

func (a *TimerActor) fire(ctx bollywood.Context) {
	ctx.Engine().Send(a.owner, EventCompleted{Name: a.name}, ctx.Self())
	ctx.Engine().Stop(ctx.Self())
}

func (a *TimerActor) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// CancelTimerActor cancels a running timer on behalf of the actor of ctx,
// which must be the timer's owner. Both an acknowledgment and the timer
// being already gone count as success; only a timeout is reported.
func CancelTimerActor(ctx bollywood.Context, timer *bollywood.PID, timeout time.Duration) error {
	_, err := ctx.Ask(timer, CancelTimer{}, timeout)
	if err == nil || errors.Is(err, bollywood.ErrTerminated) {
		return nil
	}
	return err
}
