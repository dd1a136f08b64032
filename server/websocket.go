package server

import (
	"errors"
	"io"
	"net"

	"golang.org/x/net/websocket"

	"github.com/lguibr/reminders/bollywood"
)

// SubscribedMessageType is the MessageType of the first frame sent on
// every /subscribe connection.
const SubscribedMessageType = "subscribed"

// SubscribedFrame confirms that the connection is registered.
type SubscribedFrame struct {
	MessageType string             `json:"messageType"`
	Ref         bollywood.WatchRef `json:"ref"`
}

// SubscribeHandler upgrades the connection, spawns a SubscriberActor for
// it and keeps it open until the client goes away or the actor closes it.
func (s *Server) SubscribeHandler() websocket.Handler {
	return func(ws *websocket.Conn) {
		defer func() { _ = ws.Close() }()

		pid := s.engine.Spawn(bollywood.NewProps(NewSubscriberProducer(ws, s.client)))
		if pid == nil {
			s.log.Warn("engine stopping, rejecting subscriber")
			return
		}
		defer s.engine.Stop(pid)

		s.readLoop(ws)
	}
}

// readLoop discards client frames until the connection closes.
func (s *Server) readLoop(ws *websocket.Conn) {
	for {
		var frame []byte
		err := websocket.Message.Receive(ws, &frame)
		if err == nil {
			continue
		}

		var netErr net.Error
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		case errors.As(err, &netErr) && netErr.Timeout():
			s.log.Infow("read timeout, assuming disconnect", "error", err)
		default:
			s.log.Debugw("read error", "error", err)
		}
		return
	}
}
