package reminder

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/logger"
	"github.com/lguibr/reminders/utils"
)

// SupervisorActor keeps one child alive under a registry name. It traps
// exits: a child exiting with bollywood.ErrShutdown (or a shutdown signal
// sent to the supervisor itself) ends the supervisor too, any other exit
// restarts the child immediately.
type SupervisorActor struct {
	childProps *bollywood.Props
	childName  string
	cfg        utils.SupervisorConfig
	metrics    *Metrics
	now        func() time.Time

	child    *bollywood.PID
	restarts []time.Time
	selfPID  *bollywood.PID
	log      *zap.SugaredLogger
}

// NewSupervisorProducer creates a producer for a supervisor of childProps.
func NewSupervisorProducer(childProps *bollywood.Props, childName string, cfg utils.SupervisorConfig, metrics *Metrics) bollywood.Producer {
	return func() bollywood.Actor {
		return &SupervisorActor{
			childProps: childProps,
			childName:  childName,
			cfg:        cfg,
			metrics:    metrics,
			now:        time.Now,
			log:        logger.Named("supervisor").With("child", childName),
		}
	}
}

// StartSupervisor spawns the supervision tree: a supervisor owning a
// coordinator registered as CoordinatorName.
func StartSupervisor(engine *bollywood.Engine, cfg utils.Config, metrics *Metrics) *bollywood.PID {
	coordinatorProps := bollywood.NewProps(NewCoordinatorProducer(cfg, metrics))
	supervisorProps := bollywood.NewProps(NewSupervisorProducer(coordinatorProps, CoordinatorName, cfg.Supervisor, metrics)).WithTrapExit()
	return engine.Spawn(supervisorProps)
}

// Receive Method
func (a *SupervisorActor) Receive(ctx bollywood.Context) {
	if a.selfPID == nil {
		a.selfPID = ctx.Self()
	}

	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		a.startChild(ctx)

	case bollywood.Exit:
		a.handleExit(ctx, msg)

	case bollywood.Stopping:
		a.log.Info("supervisor stopping")
		// Callers see the child as unavailable while it is still shutting down.
		if a.child != nil && a.child.Equal(ctx.Engine().Whereis(a.childName)) {
			ctx.Engine().Unregister(a.childName)
		}

	case bollywood.Stopped:

	default:
		a.log.Warnf("unknown message %T", msg)
	}
}

func (a *SupervisorActor) handleExit(ctx bollywood.Context, msg bollywood.Exit) {
	if errors.Is(msg.Reason, bollywood.ErrShutdown) {
		a.log.Infow("shutdown signal received", "from", msg.From.String())
		ctx.Engine().Kill(a.selfPID, bollywood.ErrShutdown)
		return
	}

	if !a.child.Equal(msg.From) {
		a.log.Debugw("ignoring exit from unknown actor", "from", msg.From.String(), "reason", msg.Reason)
		return
	}

	a.log.Warnw("child terminated, restarting", "pid", msg.From.String(), "reason", msg.Reason)
	a.child = nil

	if a.restartLimitReached() {
		a.log.Errorw("restart limit reached, giving up", "max_restarts", a.cfg.MaxRestarts, "window", a.cfg.RestartWindow)
		ctx.Engine().Kill(a.selfPID, ErrRestartLimit)
		return
	}

	a.metrics.restarted()
	a.startChild(ctx)
}

// restartLimitReached records a restart and reports whether more than
// MaxRestarts happened within RestartWindow. MaxRestarts <= 0 means no limit.
func (a *SupervisorActor) restartLimitReached() bool {
	if a.cfg.MaxRestarts <= 0 {
		return false
	}

	now := a.now()
	recent := a.restarts[:0]
	for _, at := range a.restarts {
		if now.Sub(at) < a.cfg.RestartWindow {
			recent = append(recent, at)
		}
	}
	a.restarts = append(recent, now)

	return len(a.restarts) > a.cfg.MaxRestarts
}

func (a *SupervisorActor) startChild(ctx bollywood.Context) {
	pid := ctx.SpawnLinked(a.childProps)
	if pid == nil {
		a.log.Error("failed to spawn child")
		ctx.Engine().Kill(a.selfPID, bollywood.ErrEngineStopping)
		return
	}
	a.child = pid

	if err := ctx.Engine().Register(a.childName, pid); err != nil {
		a.log.Errorw("failed to register child", "pid", pid.String(), "error", err)
		return
	}
	a.log.Infow("child started", "pid", pid.String())
}
