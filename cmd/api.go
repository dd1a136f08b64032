package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/lguibr/reminders/reminder"
	"github.com/lguibr/reminders/server"
)

const apiTimeout = 10 * time.Second

// apiClient talks to a running reminders server over HTTP and WebSocket.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: apiTimeout},
	}
}

func (c *apiClient) AddEvent(ctx context.Context, body server.AddEventBody) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/events", bytes.NewReader(payload), http.StatusCreated, nil)
}

func (c *apiClient) Cancel(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(name), nil, http.StatusNoContent, nil)
}

func (c *apiClient) Events(ctx context.Context) (server.EventsView, error) {
	var view server.EventsView
	err := c.do(ctx, http.MethodGet, "/events", nil, http.StatusOK, &view)
	return view, err
}

func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader, want int, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr != nil || apiErr.Error == "" {
			return fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status)
		}
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, apiErr.Error)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Listen subscribes over WebSocket and calls onEvent for every
// notification until ctx is done or the server closes the connection.
func (c *apiClient) Listen(ctx context.Context, onEvent func(reminder.EventNotification)) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/subscribe"
	ws, err := websocket.Dial(wsURL, "", c.baseURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer ws.Close()

	var frame server.SubscribedFrame
	if err := websocket.JSON.Receive(ws, &frame); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if frame.MessageType != server.SubscribedMessageType {
		return fmt.Errorf("subscribe: unexpected frame %q", frame.MessageType)
	}

	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	for {
		var note reminder.EventNotification
		if err := websocket.JSON.Receive(ws, &note); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		onEvent(note)
	}
}
