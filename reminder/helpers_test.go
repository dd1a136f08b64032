package reminder

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/utils"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// --- Mock Subscriber (Captures Received Messages) ---
type MockSubscriber struct {
	mu       sync.Mutex
	received []interface{}
}

func (a *MockSubscriber) Receive(ctx bollywood.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = append(a.received, ctx.Message())
}

func (a *MockSubscriber) GetReceived() []interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	msgs := make([]interface{}, len(a.received))
	copy(msgs, a.received)
	return msgs
}

// Notifications returns the EventNotifications received so far, optionally
// filtered by event name.
func (a *MockSubscriber) Notifications(name string) []EventNotification {
	var out []EventNotification
	for _, msg := range a.GetReceived() {
		if n, ok := msg.(EventNotification); ok && (name == "" || n.Name == name) {
			out = append(out, n)
		}
	}
	return out
}

func spawnSubscriber(t *testing.T, engine *bollywood.Engine) (*MockSubscriber, *bollywood.PID) {
	t.Helper()
	mock := &MockSubscriber{}
	pid := engine.Spawn(bollywood.NewProps(func() bollywood.Actor { return mock }))
	require.NotNil(t, pid)
	return mock, pid
}

// testConfig keeps request timeouts short so failures surface quickly.
func testConfig() utils.Config {
	cfg := utils.DefaultConfig()
	cfg.RequestTimeout = time.Second
	return cfg
}

// setupService starts a supervised coordinator and waits for it to register.
func setupService(t *testing.T, cfg utils.Config, metrics *Metrics) (*bollywood.Engine, *Client, *bollywood.PID) {
	t.Helper()

	engine := bollywood.NewEngine()
	t.Cleanup(func() { engine.Shutdown(time.Second) })

	supervisorPID := StartSupervisor(engine, cfg, metrics)
	require.NotNil(t, supervisorPID)
	require.Eventually(t, func() bool { return engine.Whereis(CoordinatorName) != nil }, waitFor, tick)

	return engine, NewClient(engine, cfg.RequestTimeout), supervisorPID
}

func subscribe(t *testing.T, engine *bollywood.Engine, client *Client) (*MockSubscriber, *bollywood.PID) {
	t.Helper()
	mock, pid := spawnSubscriber(t, engine)
	_, err := client.Subscribe(pid)
	require.NoError(t, err)
	return mock, pid
}
