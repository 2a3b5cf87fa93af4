// Package metrics exposes reader activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments of the reader. It observes the
// player and the stream adapter.
type Metrics struct {
	registry *prometheus.Registry

	WordsShown     prometheus.Counter
	WordDelay      prometheus.Histogram
	Sessions       prometheus.Counter
	AppendedTokens prometheus.Counter
	ModeChanges    *prometheus.CounterVec
	Submits        *prometheus.CounterVec
	Rebinds        prometheus.Counter
	StreamGrowth   prometheus.Counter
	WordsPerMinute prometheus.Gauge
}

var (
	_ rsvp.Observer   = (*Metrics)(nil)
	_ stream.Observer = (*Metrics)(nil)
)

// New creates the instruments on a private registry.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		WordsShown: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_shown_total",
			Help:      "Words presented to the reader.",
		}),
		WordDelay: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "word_delay_ms",
			Help:      "Display time scheduled per word in milliseconds.",
			Buckets:   []float64{50, 100, 150, 200, 300, 400, 600, 900, 1500},
		}),
		Sessions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Reading sessions opened.",
		}),
		AppendedTokens: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_appended_total",
			Help:      "Tokens appended to open sessions.",
		}),
		ModeChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mode_changes_total",
			Help:      "Playback mode changes by target mode.",
		}, []string{"mode"}),
		Submits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submits_total",
			Help:      "Composed submissions by result.",
		}, []string{"result"}),
		Rebinds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rebinds_total",
			Help:      "Times the reader switched to another source.",
		}),
		StreamGrowth: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_tokens_total",
			Help:      "Tokens appended from growing sources.",
		}),
		WordsPerMinute: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "words_per_minute",
			Help:      "Configured reading speed.",
		}),
	}
}

func (m *Metrics) SessionOpened(string, int) { m.Sessions.Inc() }

func (m *Metrics) TokensAppended(n int) { m.AppendedTokens.Add(float64(n)) }

func (m *Metrics) ModeChanged(_, to rsvp.Mode) {
	m.ModeChanges.WithLabelValues(to.String()).Inc()
}

func (m *Metrics) WordShown(_ rsvp.Token, delay time.Duration) {
	m.WordsShown.Inc()
	m.WordDelay.Observe(float64(delay.Milliseconds()))
}

func (m *Metrics) Submitted(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Submits.WithLabelValues(result).Inc()
}

func (m *Metrics) Rebound(string, int) { m.Rebinds.Inc() }

func (m *Metrics) Grew(_ string, n int) { m.StreamGrowth.Add(float64(n)) }

// ObserveSettings records the live configuration.
func (m *Metrics) ObserveSettings(cfg rsvp.Config) {
	m.WordsPerMinute.Set(float64(cfg.WordsPerMinute))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes the metrics on addr at /metrics until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("serving metrics", "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
