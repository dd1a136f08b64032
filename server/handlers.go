// File: server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/reminder"
)

// AddEventBody is the JSON body of POST /events. Timeout is in seconds; a
// non-empty Deadline (RFC3339) takes precedence.
type AddEventBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Timeout     int64  `json:"timeout"`
	Deadline    string `json:"deadline,omitempty"`
}

// EventView is one entry of GET /events.
type EventView struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Timeout     int64     `json:"timeout"`
	FiresAt     time.Time `json:"firesAt"`
}

// EventsView is the body of GET /events.
type EventsView struct {
	Events      []EventView `json:"events"`
	Subscribers int         `json:"subscribers"`
}

type errorBody struct {
	Error string `json:"error"`
}

// HandleAddEvent schedules an event.
func (s *Server) HandleAddEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body AddEventBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if body.Name == "" {
			s.writeError(w, http.StatusBadRequest, errors.New("name is required"))
			return
		}

		var err error
		if body.Deadline != "" {
			deadline, parseErr := time.Parse(time.RFC3339, body.Deadline)
			if parseErr != nil {
				s.writeError(w, http.StatusBadRequest, parseErr)
				return
			}
			err = s.client.AddEventAt(body.Name, body.Description, deadline)
		} else {
			timeout, convErr := timeoutFromSeconds(body.Timeout)
			if convErr != nil {
				s.writeError(w, statusFor(convErr), convErr)
				return
			}
			err = s.client.AddEvent(body.Name, body.Description, timeout)
		}
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}

		s.log.Debugw("event added", "name", body.Name)
		w.WriteHeader(http.StatusCreated)
	}
}

// HandleCancelEvent cancels the event named in the path.
func (s *Server) HandleCancelEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if err := s.client.Cancel(name); err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleListEvents returns the pending events.
func (s *Server) HandleListEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := s.client.Events()
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}

		view := EventsView{Events: make([]EventView, 0, len(snapshot.Events)), Subscribers: snapshot.Subscribers}
		for _, ev := range snapshot.Events {
			view.Events = append(view.Events, EventView{
				Name:        ev.Name,
				Description: ev.Description,
				Timeout:     int64(ev.Timeout / time.Second),
				FiresAt:     ev.FiresAt,
			})
		}
		s.writeJSON(w, http.StatusOK, view)
	}
}

// HandleHealth reports whether a coordinator is registered.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.engine.Whereis(reminder.CoordinatorName) == nil {
			s.writeError(w, http.StatusServiceUnavailable, reminder.ErrUnavailable)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// timeoutFromSeconds converts a timeout in seconds, rejecting values whose
// conversion to time.Duration would overflow.
func timeoutFromSeconds(seconds int64) (time.Duration, error) {
	if seconds > int64(reminder.MaxDelay/time.Second) {
		return 0, fmt.Errorf("%w: %ds", reminder.ErrDelayTooLong, seconds)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: %ds", reminder.ErrBadTimeout, seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reminder.ErrBadTimeout), errors.Is(err, reminder.ErrDelayTooLong):
		return http.StatusBadRequest
	case errors.Is(err, bollywood.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, reminder.ErrUnavailable), errors.Is(err, bollywood.ErrTerminated),
		errors.Is(err, bollywood.ErrEngineStopping):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("error writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Warnw("request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}
