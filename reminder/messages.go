package reminder

import (
	"time"

	"github.com/lguibr/reminders/bollywood"
)

// --- Client -> Coordinator ---

// SubscribeRequest registers Subscriber for completion notifications.
type SubscribeRequest struct {
	Subscriber *bollywood.PID
}

// SubscribeResponse carries the liveness watch created for the subscriber.
type SubscribeResponse struct {
	Ref bollywood.WatchRef
}

// AddEventRequest schedules an event. A non-zero Deadline takes precedence
// over Timeout and is resolved to whole seconds from now.
type AddEventRequest struct {
	Name        string
	Description string
	Timeout     time.Duration
	Deadline    time.Time
}

// AddEventResponse acknowledges an accepted event.
type AddEventResponse struct{}

// CancelEventRequest cancels the pending event called Name, if any.
type CancelEventRequest struct {
	Name string
}

// CancelEventResponse acknowledges a cancel request. It is sent whether or
// not the event existed.
type CancelEventResponse struct{}

// ListEventsRequest asks for a snapshot of the coordinator state.
type ListEventsRequest struct{}

// ListEventsResponse is the snapshot returned for ListEventsRequest.
type ListEventsResponse struct {
	Events      []EventInfo
	Subscribers int
}

// EventInfo describes one pending event.
type EventInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Timeout     time.Duration `json:"timeout"`
	FiresAt     time.Time     `json:"firesAt"`
}

// ShutdownCommand terminates the coordinator with bollywood.ErrShutdown.
type ShutdownCommand struct{}

// --- Coordinator <-> TimerActor ---

// CancelTimer asks a timer to stop before firing. Only honoured when sent
// by the timer's owner.
type CancelTimer struct{}

// TimerCancelled acknowledges CancelTimer.
type TimerCancelled struct{}

// EventCompleted is sent by a timer to its owner when it fires.
type EventCompleted struct {
	Name string
}

// --- Coordinator -> Subscribers ---

// EventNotification is broadcast to every subscriber when an event fires.
type EventNotification struct {
	MessageType string `json:"messageType"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NotificationMessageType is the MessageType of every EventNotification.
const NotificationMessageType = "eventDone"

func newNotification(name, description string) EventNotification {
	return EventNotification{MessageType: NotificationMessageType, Name: name, Description: description}
}
