// Package metrics exposes Prometheus collectors for the daemon.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversa_sync_runs_total",
			Help: "Reconciler sync runs by result.",
		},
		[]string{"result"},
	)

	MessagesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversa_messages_applied_total",
			Help: "Changes applied to open conversation views by kind of change.",
		},
		[]string{"change"},
	)

	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversa_uploads_total",
			Help: "Media uploads by message kind and result.",
		},
		[]string{"kind", "result"},
	)

	ReactionsToggled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversa_reactions_toggled_total",
			Help: "Reaction toggles by direction.",
		},
		[]string{"direction"},
	)

	Forwards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conversa_forwards_total",
			Help: "Messages forwarded, one per recipient.",
		},
	)

	OpenConversations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversa_open_conversations",
			Help: "Conversation views currently open.",
		},
	)
)

// Registry holds every collector of this package plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		SyncRuns,
		MessagesApplied,
		Uploads,
		ReactionsToggled,
		Forwards,
		OpenConversations,
		collectors.NewGoCollector(),
	)
}

// Server serves /metrics over HTTP.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer returns a server for addr. It does not listen until Start.
func NewServer(addr string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("metrics server starting", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server error", zap.Error(err))
		}
	}()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
