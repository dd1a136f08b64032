package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/reminder"
	"github.com/lguibr/reminders/server"
	"github.com/lguibr/reminders/utils"
)

func startServer(t *testing.T) *apiClient {
	t.Helper()

	cfg := utils.DefaultConfig()
	cfg.RequestTimeout = time.Second

	engine := bollywood.NewEngine()
	t.Cleanup(func() { engine.Shutdown(time.Second) })

	registry := prometheus.NewRegistry()
	require.NotNil(t, reminder.StartSupervisor(engine, cfg, reminder.NewMetrics(registry)))
	require.Eventually(t, func() bool {
		return engine.Whereis(reminder.CoordinatorName) != nil
	}, 2*time.Second, 10*time.Millisecond)

	s := httptest.NewServer(server.New(engine, reminder.NewClient(engine, cfg.RequestTimeout), registry).Routes())
	t.Cleanup(s.Close)

	return newAPIClient(s.URL + "/")
}

func TestAPIClient_AddListCancel(t *testing.T) {
	api := startServer(t)
	ctx := context.Background()

	require.NoError(t, api.AddEvent(ctx, server.AddEventBody{Name: "lunch", Description: "noodles", Timeout: 600}))

	view, err := api.Events(ctx)
	require.NoError(t, err)
	require.Len(t, view.Events, 1)
	assert.Equal(t, "lunch", view.Events[0].Name)

	require.NoError(t, api.Cancel(ctx, "lunch"))

	view, err = api.Events(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Events)
}

func TestAPIClient_SurfacesServerError(t *testing.T) {
	api := startServer(t)

	err := api.AddEvent(context.Background(), server.AddEventBody{Name: "never", Timeout: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), reminder.ErrBadTimeout.Error())
}

func TestAPIClient_CancelEscapesName(t *testing.T) {
	api := startServer(t)
	ctx := context.Background()

	require.NoError(t, api.AddEvent(ctx, server.AddEventBody{Name: "a/b c", Timeout: 600}))
	require.NoError(t, api.Cancel(ctx, "a/b c"))

	view, err := api.Events(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Events)
}

func TestAPIClient_Listen(t *testing.T) {
	api := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var received []reminder.EventNotification
	done := make(chan error, 1)
	go func() {
		done <- api.Listen(ctx, func(note reminder.EventNotification) {
			mu.Lock()
			received = append(received, note)
			mu.Unlock()
			cancel()
		})
	}()

	require.Eventually(t, func() bool {
		view, err := api.Events(context.Background())
		return err == nil && view.Subscribers == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, api.AddEvent(context.Background(), server.AddEventBody{Name: "ping", Description: "pong", Timeout: 1}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "ping", received[0].Name)
	assert.Equal(t, "pong", received[0].Description)
}

func TestPrintEvents(t *testing.T) {
	var out bytes.Buffer
	view := server.EventsView{
		Events: []server.EventView{
			{Name: "standup", Description: "daily", FiresAt: time.Date(2030, 1, 2, 9, 30, 0, 0, time.UTC)},
		},
		Subscribers: 2,
	}

	require.NoError(t, printEvents(&out, view))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "standup")
	assert.Contains(t, out.String(), "daily")
	assert.Contains(t, out.String(), "1 pending, 2 subscribers")
}
