package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/reminders/bollywood"
)

var errDie = errors.New("die")

func waitForNewCoordinator(t *testing.T, engine *bollywood.Engine, old *bollywood.PID) *bollywood.PID {
	t.Helper()
	var current *bollywood.PID
	require.Eventually(t, func() bool {
		current = engine.Whereis(CoordinatorName)
		return current != nil && !current.Equal(old)
	}, waitFor, tick)
	return current
}

func TestSupervisor_RestartsCrashedCoordinator(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	engine, client, supervisorPID := setupService(t, testConfig(), metrics)
	require.NoError(t, client.AddEvent("lost", "", time.Minute))

	crashed := engine.Whereis(CoordinatorName)
	engine.Kill(crashed, errDie)

	restarted := waitForNewCoordinator(t, engine, crashed)
	assert.True(t, engine.IsAlive(supervisorPID))
	assert.True(t, engine.IsAlive(restarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Restarts))

	state, err := client.Events()
	require.NoError(t, err)
	assert.Empty(t, state.Events, "a restarted coordinator starts empty")
	assert.NoError(t, client.AddEvent("fresh", "", time.Minute))
}

type panicTrigger struct{}

func TestSupervisor_RestartsChildAfterPanic(t *testing.T) {
	engine := bollywood.NewEngine()
	defer engine.Shutdown(time.Second)

	childProps := bollywood.NewProps(func() bollywood.Actor {
		return bollywood.ActorFunc(func(ctx bollywood.Context) {
			if _, ok := ctx.Message().(panicTrigger); ok {
				panic("crashy")
			}
		})
	})
	cfg := testConfig()
	supervisorPID := engine.Spawn(bollywood.NewProps(NewSupervisorProducer(childProps, "crashy", cfg.Supervisor, nil)).WithTrapExit())
	require.Eventually(t, func() bool { return engine.Whereis("crashy") != nil }, waitFor, tick)
	crashed := engine.Whereis("crashy")

	engine.Send(crashed, panicTrigger{}, nil)

	require.Eventually(t, func() bool {
		current := engine.Whereis("crashy")
		return current != nil && !current.Equal(crashed)
	}, waitFor, tick)
	assert.True(t, engine.IsAlive(supervisorPID))
}

func TestSupervisor_CrashKillsPendingTimers(t *testing.T) {
	engine, client, _ := setupService(t, testConfig(), nil)
	crashed := engine.Whereis(CoordinatorName)
	early, _ := subscribe(t, engine, client)

	require.NoError(t, client.AddEvent("orphan", "", 150*time.Millisecond))

	engine.Kill(crashed, errDie)
	waitForNewCoordinator(t, engine, crashed)

	late, _ := subscribe(t, engine, client)
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, early.Notifications("orphan"))
	assert.Empty(t, late.Notifications("orphan"))
}

func TestSupervisor_ShutdownSignalStopsTree(t *testing.T) {
	engine, _, supervisorPID := setupService(t, testConfig(), nil)
	coordinator := engine.Whereis(CoordinatorName)

	engine.Exit(supervisorPID, bollywood.ErrShutdown)

	require.Eventually(t, func() bool { return !engine.IsAlive(supervisorPID) }, waitFor, tick)
	require.Eventually(t, func() bool { return !engine.IsAlive(coordinator) }, waitFor, tick)
}

func TestSupervisor_UnregistersChildBeforeItFinishes(t *testing.T) {
	engine := bollywood.NewEngine()
	defer engine.Shutdown(2 * time.Second)

	childStopped := make(chan struct{})
	childProps := bollywood.NewProps(func() bollywood.Actor {
		return bollywood.ActorFunc(func(ctx bollywood.Context) {
			if _, ok := ctx.Message().(bollywood.Stopping); ok {
				time.Sleep(500 * time.Millisecond)
				close(childStopped)
			}
		})
	})
	cfg := testConfig()
	supervisorPID := engine.Spawn(bollywood.NewProps(NewSupervisorProducer(childProps, "slow", cfg.Supervisor, nil)).WithTrapExit())
	require.Eventually(t, func() bool { return engine.Whereis("slow") != nil }, waitFor, tick)

	engine.Kill(supervisorPID, errDie)

	require.Eventually(t, func() bool { return engine.Whereis("slow") == nil }, 200*time.Millisecond, tick)
	select {
	case <-childStopped:
		t.Fatal("name should be gone while the child is still stopping")
	default:
	}
	<-childStopped
}

func TestSupervisor_GivesUpAfterRestartLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Supervisor.MaxRestarts = 1
	cfg.Supervisor.RestartWindow = time.Minute
	engine, _, supervisorPID := setupService(t, cfg, nil)

	first := engine.Whereis(CoordinatorName)
	engine.Kill(first, errDie)
	second := waitForNewCoordinator(t, engine, first)

	engine.Kill(second, errDie)

	require.Eventually(t, func() bool { return !engine.IsAlive(supervisorPID) }, waitFor, tick)
	assert.Nil(t, engine.Whereis(CoordinatorName))
}

func TestSupervisor_RestartLimitWindowSlides(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sup := &SupervisorActor{
		now: func() time.Time { return now },
	}
	sup.cfg.MaxRestarts = 2
	sup.cfg.RestartWindow = time.Second

	assert.False(t, sup.restartLimitReached())
	assert.False(t, sup.restartLimitReached())
	assert.True(t, sup.restartLimitReached())

	now = now.Add(2 * time.Second)
	assert.False(t, sup.restartLimitReached(), "old restarts fall out of the window")
}
