package mic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Exit reasons used as the "reason" label of mic_process_exits_total
const (
	ExitReasonNormal  = "exit"
	ExitReasonSignal  = "signal"
	ExitReasonStopped = "stopped"
)

// Metrics contains the Prometheus collectors for capture sessions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Detector metrics
	ChunksProcessed prometheus.Counter
	BytesProcessed  prometheus.Counter
	SilenceEvents   prometheus.Counter
	SoundEvents     prometheus.Counter

	// Process metrics
	ProcessLaunches prometheus.Counter
	LaunchFailures  prometheus.Counter
	ProcessExits    *prometheus.CounterVec
	ActiveProcesses prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		ChunksProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "mic_chunks_processed_total",
			Help: "Total number of audio chunks passed through the silence detector",
		}),
		BytesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "mic_bytes_processed_total",
			Help: "Total number of audio bytes passed through the silence detector",
		}),
		SilenceEvents: f.NewCounter(prometheus.CounterOpts{
			Name: "mic_silence_events_total",
			Help: "Total number of silence notifications raised",
		}),
		SoundEvents: f.NewCounter(prometheus.CounterOpts{
			Name: "mic_sound_events_total",
			Help: "Total number of sound notifications raised",
		}),
		ProcessLaunches: f.NewCounter(prometheus.CounterOpts{
			Name: "mic_process_launches_total",
			Help: "Total number of capture processes launched",
		}),
		LaunchFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "mic_launch_failures_total",
			Help: "Total number of capture processes that failed to launch",
		}),
		ProcessExits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mic_process_exits_total",
			Help: "Total number of capture process exits by reason",
		}, []string{"reason"}),
		ActiveProcesses: f.NewGauge(prometheus.GaugeOpts{
			Name: "mic_active_processes",
			Help: "Current number of running capture processes",
		}),
	}
}

func (m *Metrics) observeChunk(size int) {
	if m == nil {
		return
	}
	m.ChunksProcessed.Inc()
	m.BytesProcessed.Add(float64(size))
}

func (m *Metrics) observeEvent(ev Event) {
	if m == nil {
		return
	}
	switch ev {
	case EventSilence:
		m.SilenceEvents.Inc()
	case EventSound:
		m.SoundEvents.Inc()
	}
}

func (m *Metrics) observeLaunch(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.LaunchFailures.Inc()
		return
	}
	m.ProcessLaunches.Inc()
	m.ActiveProcesses.Inc()
}

func (m *Metrics) observeExit(reason string) {
	if m == nil {
		return
	}
	m.ProcessExits.WithLabelValues(reason).Inc()
	m.ActiveProcesses.Dec()
}
