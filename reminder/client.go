package reminder

import (
	"fmt"
	"time"

	"github.com/lguibr/reminders/bollywood"
)

// Client is the synchronous API over the coordinator. Each call resolves
// the coordinator through the engine registry, so calls keep working
// across supervisor restarts.
type Client struct {
	engine  *bollywood.Engine
	timeout time.Duration
}

// NewClient creates a client whose calls wait at most timeout for a reply.
func NewClient(engine *bollywood.Engine, timeout time.Duration) *Client {
	return &Client{engine: engine, timeout: timeout}
}

func (c *Client) coordinator() (*bollywood.PID, error) {
	pid := c.engine.Whereis(CoordinatorName)
	if pid == nil {
		return nil, ErrUnavailable
	}
	return pid, nil
}

func (c *Client) ask(message interface{}) (interface{}, error) {
	pid, err := c.coordinator()
	if err != nil {
		return nil, err
	}
	return c.engine.Ask(pid, message, c.timeout)
}

// Subscribe registers subscriber for completion notifications. The
// subscription ends when the subscriber terminates.
func (c *Client) Subscribe(subscriber *bollywood.PID) (bollywood.WatchRef, error) {
	reply, err := c.ask(SubscribeRequest{Subscriber: subscriber})
	if err != nil {
		return "", fmt.Errorf("subscribe: %w", err)
	}
	response, ok := reply.(SubscribeResponse)
	if !ok {
		return "", fmt.Errorf("subscribe: unexpected reply %T", reply)
	}
	return response.Ref, nil
}

// AddEvent schedules an event firing after timeout.
func (c *Client) AddEvent(name, description string, timeout time.Duration) error {
	return c.addEvent(AddEventRequest{Name: name, Description: description, Timeout: timeout})
}

// AddEventAt schedules an event firing at deadline, in whole seconds.
func (c *Client) AddEventAt(name, description string, deadline time.Time) error {
	return c.addEvent(AddEventRequest{Name: name, Description: description, Deadline: deadline})
}

func (c *Client) addEvent(request AddEventRequest) error {
	if _, err := c.ask(request); err != nil {
		return fmt.Errorf("add event %q: %w", request.Name, err)
	}
	return nil
}

// Cancel removes a pending event. Cancelling an unknown name succeeds.
func (c *Client) Cancel(name string) error {
	if _, err := c.ask(CancelEventRequest{Name: name}); err != nil {
		return fmt.Errorf("cancel event %q: %w", name, err)
	}
	return nil
}

// Events returns the pending events and the number of subscribers.
func (c *Client) Events() (ListEventsResponse, error) {
	reply, err := c.ask(ListEventsRequest{})
	if err != nil {
		return ListEventsResponse{}, fmt.Errorf("list events: %w", err)
	}
	response, ok := reply.(ListEventsResponse)
	if !ok {
		return ListEventsResponse{}, fmt.Errorf("list events: unexpected reply %T", reply)
	}
	return response, nil
}

// Shutdown asks the coordinator to terminate with bollywood.ErrShutdown.
// It does not wait.
func (c *Client) Shutdown() error {
	pid, err := c.coordinator()
	if err != nil {
		return err
	}
	c.engine.Send(pid, ShutdownCommand{}, nil)
	return nil
}
