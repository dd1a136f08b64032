package server

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/logger"
	"github.com/lguibr/reminders/reminder"
)

// SubscriberActor forwards completion notifications to one WebSocket
// connection. It subscribes itself while handling Started, so the
// subscribed frame is always written before any notification.
type SubscriberActor struct {
	conn      *websocket.Conn
	client    *reminder.Client
	connAddr  string
	log       *zap.SugaredLogger
	closeOnce sync.Once
}

// NewSubscriberProducer creates a producer for SubscriberActor.
func NewSubscriberProducer(conn *websocket.Conn, client *reminder.Client) bollywood.Producer {
	return func() bollywood.Actor {
		addr := "unknown"
		if conn != nil && conn.Request() != nil {
			addr = conn.Request().RemoteAddr
		}
		return &SubscriberActor{
			conn:     conn,
			client:   client,
			connAddr: addr,
			log:      logger.Named("subscriber").With("remote", addr),
		}
	}
}

// Receive handles messages for the SubscriberActor.
func (a *SubscriberActor) Receive(ctx bollywood.Context) {
	switch msg := ctx.Message().(type) {
	case bollywood.Started:
		a.subscribe(ctx)
	case reminder.EventNotification:
		if err := websocket.JSON.Send(a.conn, msg); err != nil {
			a.log.Infow("notification write failed, closing", "event", msg.Name, "error", err)
			a.closeConn()
			ctx.Engine().Stop(ctx.Self())
		}
	case bollywood.Stopping:
		a.closeConn()
	case bollywood.Stopped:
		a.log.Debugw("subscriber stopped", "pid", ctx.Self())
	default:
		a.log.Warnf("unknown message %T", msg)
	}
}

// subscribe registers the actor with the coordinator. Notifications sent
// meanwhile wait in the mailbox until the confirmation frame is out.
func (a *SubscriberActor) subscribe(ctx bollywood.Context) {
	ref, err := a.client.Subscribe(ctx.Self())
	if err != nil {
		a.log.Warnw("subscribe failed", "error", err)
		_ = websocket.JSON.Send(a.conn, errorBody{Error: err.Error()})
		a.closeConn()
		ctx.Engine().Stop(ctx.Self())
		return
	}

	if err := websocket.JSON.Send(a.conn, SubscribedFrame{MessageType: SubscribedMessageType, Ref: ref}); err != nil {
		a.log.Infow("confirmation write failed, closing", "error", err)
		a.closeConn()
		ctx.Engine().Stop(ctx.Self())
		return
	}
	a.log.Debugw("subscriber started", "pid", ctx.Self(), "ref", ref)
}

func (a *SubscriberActor) closeConn() {
	a.closeOnce.Do(func() {
		if a.conn != nil {
			_ = a.conn.Close()
		}
	})
}
