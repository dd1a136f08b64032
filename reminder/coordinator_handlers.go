package reminder

import (
	"fmt"
	"sort"

	"github.com/lguibr/reminders/bollywood"
)

func (a *CoordinatorActor) handleSubscribe(ctx bollywood.Context, msg SubscribeRequest) {
	if msg.Subscriber == nil {
		reply(ctx, fmt.Errorf("subscribe: %w", bollywood.ErrNoProcess))
		return
	}

	ref := ctx.Watch(msg.Subscriber)
	a.subscribers[ref] = &SubscriberRecord{Ref: ref, Address: msg.Subscriber}
	a.log.Debugw("subscriber added", "subscriber", msg.Subscriber.String(), "ref", ref)

	reply(ctx, SubscribeResponse{Ref: ref})
}

func (a *CoordinatorActor) handleAddEvent(ctx bollywood.Context, msg AddEventRequest) {
	timeout := msg.Timeout
	if !msg.Deadline.IsZero() {
		timeout = ResolveDeadline(a.now(), msg.Deadline)
	}
	if err := ValidateDelay(timeout); err != nil {
		a.log.Debugw("event rejected", "event", msg.Name, "error", err)
		reply(ctx, err)
		return
	}

	// A second add under the same name replaces the first one.
	if previous, ok := a.events[msg.Name]; ok {
		a.log.Infow("replacing pending event", "event", msg.Name)
		a.cancelTimer(ctx, previous)
		delete(a.events, msg.Name)
	}

	timerPID := SpawnLinkedTimer(ctx, msg.Name, timeout)
	if timerPID == nil {
		reply(ctx, fmt.Errorf("add %q: %w", msg.Name, bollywood.ErrEngineStopping))
		return
	}

	a.events[msg.Name] = &EventRecord{
		Name:        msg.Name,
		Description: msg.Description,
		Timer:       timerPID,
		Timeout:     timeout,
		FiresAt:     a.now().Add(timeout),
	}
	a.metrics.eventAdded()
	a.log.Debugw("event added", "event", msg.Name, "timeout", timeout, "timer", timerPID.String())

	reply(ctx, AddEventResponse{})
}

func (a *CoordinatorActor) handleCancelEvent(ctx bollywood.Context, msg CancelEventRequest) {
	record, ok := a.events[msg.Name]
	if ok {
		a.cancelTimer(ctx, record)
		delete(a.events, msg.Name)
		a.metrics.eventCancelled()
		a.log.Debugw("event cancelled", "event", msg.Name)
	}

	reply(ctx, CancelEventResponse{})
}

// cancelTimer stops the timer of record. A timer that does not answer in
// time is killed so it can never report completion for a removed record.
func (a *CoordinatorActor) cancelTimer(ctx bollywood.Context, record *EventRecord) {
	if err := CancelTimerActor(ctx, record.Timer, a.cfg.RequestTimeout); err != nil {
		a.log.Warnw("timer did not acknowledge cancel", "event", record.Name, "timer", record.Timer.String(), "error", err)
		ctx.Engine().Stop(record.Timer)
	}
}

func (a *CoordinatorActor) handleListEvents(ctx bollywood.Context) {
	events := make([]EventInfo, 0, len(a.events))
	for _, record := range a.events {
		events = append(events, EventInfo{
			Name:        record.Name,
			Description: record.Description,
			Timeout:     record.Timeout,
			FiresAt:     record.FiresAt,
		})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].FiresAt.Equal(events[j].FiresAt) {
			return events[i].Name < events[j].Name
		}
		return events[i].FiresAt.Before(events[j].FiresAt)
	})

	reply(ctx, ListEventsResponse{Events: events, Subscribers: len(a.subscribers)})
}

func (a *CoordinatorActor) handleEventCompleted(ctx bollywood.Context, msg EventCompleted) {
	record, ok := a.events[msg.Name]
	// A completion from a superseded or cancelled timer is stale.
	if !ok || !record.Timer.Equal(ctx.Sender()) {
		a.log.Debugw("dropping completion for unknown event", "event", msg.Name, "timer", ctx.Sender().String())
		return
	}
	delete(a.events, msg.Name)
	a.metrics.eventFired()

	notification := newNotification(record.Name, record.Description)
	for _, subscriber := range a.subscribers {
		ctx.Engine().Send(subscriber.Address, notification, a.selfPID)
	}
	a.log.Debugw("event fired", "event", record.Name, "subscribers", len(a.subscribers))
}

func (a *CoordinatorActor) handleSubscriberDown(msg bollywood.Terminated) {
	if _, ok := a.subscribers[msg.Ref]; !ok {
		return
	}
	delete(a.subscribers, msg.Ref)
	a.log.Debugw("subscriber down", "subscriber", msg.Who.String(), "reason", msg.Reason)
}
