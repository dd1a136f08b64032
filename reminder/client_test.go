package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lguibr/reminders/bollywood"
)

func TestClient_UnavailableWithoutCoordinator(t *testing.T) {
	engine := bollywood.NewEngine()
	defer engine.Shutdown(time.Second)
	client := NewClient(engine, 100*time.Millisecond)

	assert.ErrorIs(t, client.AddEvent("x", "", time.Second), ErrUnavailable)
	assert.ErrorIs(t, client.Cancel("x"), ErrUnavailable)
	assert.ErrorIs(t, client.Shutdown(), ErrUnavailable)
	_, err := client.Events()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_TimesOutOnUnresponsiveCoordinator(t *testing.T) {
	engine := bollywood.NewEngine()
	defer engine.Shutdown(time.Second)

	// A registered actor that never replies stands in for a stuck coordinator.
	_, silent := spawnSubscriber(t, engine)
	require.NoError(t, engine.Register(CoordinatorName, silent))
	client := NewClient(engine, 50*time.Millisecond)

	err := client.AddEvent("x", "", time.Second)
	assert.ErrorIs(t, err, bollywood.ErrTimeout)
}

func TestListener_CollectsNotificationsWithinWindow(t *testing.T) {
	_, client, _ := setupService(t, testConfig(), nil)

	listener, err := client.NewListener()
	require.NoError(t, err)
	defer listener.Close()

	require.NoError(t, client.AddEvent("L1", "one", 50*time.Millisecond))
	require.NoError(t, client.AddEvent("L2", "two", 80*time.Millisecond))

	start := time.Now()
	received := listener.Listen(300 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)

	require.Len(t, received, 2)
	assert.ElementsMatch(t, []EventNotification{newNotification("L1", "one"), newNotification("L2", "two")}, received)
	assert.Empty(t, listener.Listen(20*time.Millisecond))
}

func TestListener_CloseUnsubscribes(t *testing.T) {
	_, client, _ := setupService(t, testConfig(), nil)

	listener, err := client.NewListener()
	require.NoError(t, err)

	state, err := client.Events()
	require.NoError(t, err)
	assert.Equal(t, 1, state.Subscribers)

	listener.Close()
	require.Eventually(t, func() bool {
		state, err := client.Events()
		return err == nil && state.Subscribers == 0
	}, waitFor, tick)
}

func TestListener_WarnsWhenBufferIsFull(t *testing.T) {
	engine := bollywood.NewEngine()
	defer engine.Shutdown(time.Second)

	core, logs := observer.New(zapcore.WarnLevel)
	out := make(chan EventNotification, 1)
	pid := engine.Spawn(bollywood.NewProps(func() bollywood.Actor {
		return &collectorActor{out: out, log: zap.New(core).Sugar()}
	}))

	engine.Send(pid, newNotification("first", ""), nil)
	engine.Send(pid, newNotification("second", ""), nil)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("listener buffer full, dropping notification").Len() == 1
	}, waitFor, tick)
	dropped := logs.FilterMessage("listener buffer full, dropping notification").All()[0]
	assert.Equal(t, "second", dropped.ContextMap()["event"])

	require.Len(t, out, 1)
	assert.Equal(t, "first", (<-out).Name)
}
