package server

import (
	"net/http"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/logger"
	"github.com/lguibr/reminders/reminder"
)

// Server exposes the reminder client over HTTP and streams notifications
// over WebSocket.
type Server struct {
	engine   *bollywood.Engine
	client   *reminder.Client
	gatherer prometheus.Gatherer
	log      *zap.SugaredLogger
}

// New creates a Server. A nil gatherer serves the default registry.
func New(engine *bollywood.Engine, client *reminder.Client, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		engine:   engine,
		client:   client,
		gatherer: gatherer,
		log:      logger.Named("server"),
	}
}

// Routes returns the HTTP handler with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", s.HandleAddEvent())
	mux.HandleFunc("GET /events", s.HandleListEvents())
	mux.HandleFunc("DELETE /events/{name}", s.HandleCancelEvent())
	mux.Handle("GET /subscribe", s.SubscribeHandler())
	mux.HandleFunc("GET /healthz", s.HandleHealth())
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return s.recoverer(mux)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Errorw("panic recovered in handler",
					"method", r.Method, "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
