package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics contains all Prometheus metrics for dictation. All methods are
// safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Capture metrics
	SessionsStarted   prometheus.Counter
	SamplesCaptured   prometheus.Counter
	ChunkReadErrors   prometheus.Counter
	RecordingDuration prometheus.Histogram
	EmptyRecordings   prometheus.Counter
	DeviceErrors      prometheus.Counter

	// Transcription metrics
	TranscriptionDuration prometheus.Histogram
	TranscriptionFailures prometheus.Counter

	// Injection metrics
	InjectFailures prometheus.Counter
}

// New creates metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ptt_sessions_started_total",
			Help: "Total number of recordings started",
		}),
		SamplesCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "ptt_samples_captured_total",
			Help: "Total number of PCM samples captured",
		}),
		ChunkReadErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "ptt_chunk_read_errors_total",
			Help: "Total number of failed or overflowed chunk reads",
		}),
		RecordingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ptt_recording_duration_seconds",
			Help:    "Length of captured audio per recording",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		EmptyRecordings: factory.NewCounter(prometheus.CounterOpts{
			Name: "ptt_empty_recordings_total",
			Help: "Total number of recordings that captured nothing",
		}),
		DeviceErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "ptt_device_errors_total",
			Help: "Total number of failed attempts to open the input device",
		}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ptt_transcription_duration_seconds",
			Help:    "Time spent in the transcription engine",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ptt_transcription_failures_total",
			Help: "Total number of failed transcriptions",
		}),
		InjectFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ptt_inject_failures_total",
			Help: "Total number of failed text injections",
		}),
	}
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

func (m *Metrics) ChunkCaptured(samples int) {
	if m == nil {
		return
	}
	m.SamplesCaptured.Add(float64(samples))
}

func (m *Metrics) ChunkFailed() {
	if m == nil {
		return
	}
	m.ChunkReadErrors.Inc()
}

func (m *Metrics) SessionStopped(recorded time.Duration) {
	if m == nil {
		return
	}
	m.RecordingDuration.Observe(recorded.Seconds())
	if recorded == 0 {
		m.EmptyRecordings.Inc()
	}
}

func (m *Metrics) DeviceUnavailable() {
	if m == nil {
		return
	}
	m.DeviceErrors.Inc()
}

// ObserveTranscription records one engine call
func (m *Metrics) ObserveTranscription(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.TranscriptionDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.TranscriptionFailures.Inc()
	}
}

func (m *Metrics) InjectFailed() {
	if m == nil {
		return
	}
	m.InjectFailures.Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
