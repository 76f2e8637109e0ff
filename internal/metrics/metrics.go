// Package metrics instruments the simulation with Prometheus and
// serves them on an internal localhost-only debug endpoint.
package metrics

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics with bounded cardinality: the only label is the team name.
// A nil *Metrics is valid and records nothing, so library users can
// opt out.
type Metrics struct {
	stepDuration  prometheus.Histogram
	simDuration   prometheus.Histogram
	thinkDuration *prometheus.HistogramVec
	thinkOverruns *prometheus.CounterVec
	brainFaults   *prometheus.CounterVec
	gamesDone     prometheus.Counter
	solverIter    prometheus.Gauge
}

// New registers the simulation metrics on the given registerer; pass
// prometheus.DefaultRegisterer for the usual global set.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		stepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sim_step_duration_seconds",
			Help:    "Time spent in one full game step",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		simDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sim_physics_duration_seconds",
			Help:    "Time spent in the physics substeps of one step",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		thinkDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sim_think_duration_seconds",
			Help:    "Brain think time per tank per step",
			Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.025, 0.1},
		}, []string{"team"}),
		thinkOverruns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sim_think_overruns_total",
			Help: "Actions discarded because a brain exceeded its budget",
		}, []string{"team"}),
		brainFaults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sim_brain_faults_total",
			Help: "Brain errors and panics contained by the engine",
		}, []string{"team"}),
		gamesDone: f.NewCounter(prometheus.CounterOpts{
			Name: "sim_games_completed_total",
			Help: "Games run to completion or interruption",
		}),
		solverIter: f.NewGauge(prometheus.GaugeOpts{
			Name: "sim_solver_iterations",
			Help: "Separation iterations used by the last substep",
		}),
	}
}

func (m *Metrics) ObserveStep(d time.Duration) {
	if m != nil {
		m.stepDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveSim(d time.Duration) {
	if m != nil {
		m.simDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveThink(team string, d time.Duration) {
	if m != nil {
		m.thinkDuration.WithLabelValues(team).Observe(d.Seconds())
	}
}

func (m *Metrics) ThinkOverrun(team string) {
	if m != nil {
		m.thinkOverruns.WithLabelValues(team).Inc()
	}
}

func (m *Metrics) BrainFault(team string) {
	if m != nil {
		m.brainFaults.WithLabelValues(team).Inc()
	}
}

func (m *Metrics) GameCompleted() {
	if m != nil {
		m.gamesDone.Inc()
	}
}

func (m *Metrics) SetSolverIterations(n int) {
	if m != nil {
		m.solverIter.Set(float64(n))
	}
}

// StartDebugServer serves promhttp, pprof and a health check in the
// background. The listener is forced to localhost: pprof must never be
// reachable externally.
func StartDebugServer(addr string, log zerolog.Logger) {
	if !strings.HasPrefix(addr, "127.0.0.1:") && !strings.HasPrefix(addr, "localhost:") {
		log.Warn().Str("addr", addr).Msg("debug server forced to localhost")
		addr = "127.0.0.1:6060"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		log.Info().Str("addr", addr).Msg("debug server listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("debug server stopped")
		}
	}()
}
