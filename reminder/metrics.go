package reminder

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors updated by the coordinator and
// the supervisor. A nil *Metrics records nothing.
type Metrics struct {
	EventsAdded     prometheus.Counter
	EventsFired     prometheus.Counter
	EventsCancelled prometheus.Counter
	EventsPending   prometheus.Gauge
	Subscribers     prometheus.Gauge
	Restarts        prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reminders",
			Name:      "events_added_total",
			Help:      "Events accepted by the coordinator.",
		}),
		EventsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reminders",
			Name:      "events_fired_total",
			Help:      "Events whose timer fired and were broadcast.",
		}),
		EventsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reminders",
			Name:      "events_cancelled_total",
			Help:      "Pending events removed by a cancel request.",
		}),
		EventsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reminders",
			Name:      "events_pending",
			Help:      "Events waiting for their timer.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reminders",
			Name:      "subscribers",
			Help:      "Live subscribers known to the coordinator.",
		}),
		Restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reminders",
			Name:      "coordinator_restarts_total",
			Help:      "Coordinator restarts performed by the supervisor.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.EventsAdded, m.EventsFired, m.EventsCancelled, m.EventsPending, m.Subscribers, m.Restarts)
	}

	return m
}

func (m *Metrics) eventAdded() {
	if m != nil {
		m.EventsAdded.Inc()
	}
}

func (m *Metrics) eventFired() {
	if m != nil {
		m.EventsFired.Inc()
	}
}

func (m *Metrics) eventCancelled() {
	if m != nil {
		m.EventsCancelled.Inc()
	}
}

func (m *Metrics) restarted() {
	if m != nil {
		m.Restarts.Inc()
	}
}

// observe publishes the current state sizes.
func (m *Metrics) observe(pending, subscribers int) {
	if m != nil {
		m.EventsPending.Set(float64(pending))
		m.Subscribers.Set(float64(subscribers))
	}
}
