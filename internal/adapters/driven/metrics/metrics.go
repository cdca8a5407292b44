// Package metrics exposes record outcomes and pass durations to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.OutcomeObserver = (*Recorder)(nil)

// Recorder counts outcomes and times passes.
type Recorder struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failed   *prometheus.CounterVec
	lastPass *prometheus.GaugeVec
}

// NewRecorder registers the collectors on reg. A nil reg uses the default
// registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autopecas_records_processed_total",
			Help: "Records finished, by queue, operation and return code.",
		}, []string{"queue", "operation", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "autopecas_pass_duration_seconds",
			Help:    "Duration of a pass over one queue.",
			Buckets: prometheus.DefBuckets,
		}, []string{"queue"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autopecas_pass_errors_total",
			Help: "Passes aborted before every group was processed.",
		}, []string{"queue"}),
		lastPass: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "autopecas_last_pass_timestamp_seconds",
			Help: "Unix time the last pass over a queue ended.",
		}, []string{"queue"}),
	}
}

// OutcomeRecorded counts one record outcome.
func (r *Recorder) OutcomeRecorded(_ context.Context, o domain.Outcome) {
	r.outcomes.WithLabelValues(o.Queue, o.Operation, strconv.Itoa(int(o.Code))).Inc()
}

// BatchFinished observes the pass duration.
func (r *Recorder) BatchFinished(_ context.Context, s domain.BatchSummary) {
	r.duration.WithLabelValues(s.Queue).Observe(s.Duration().Seconds())
	if s.Error != "" {
		r.failed.WithLabelValues(s.Queue).Inc()
	}
	end := s.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	r.lastPass.WithLabelValues(s.Queue).Set(float64(end.Unix()))
}

// Server serves /metrics and /health.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates a metrics server for gatherer on addr. A nil gatherer
// uses the default one.
func NewServer(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Handler(gatherer),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.Named("metrics"),
	}
}

// Handler returns the metrics mux.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.logger.Info("metrics server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
