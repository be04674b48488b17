package mic

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ProcessExits.WithLabelValues(ExitReasonNormal)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "mic_chunks_processed_total")
	assert.Contains(t, names, "mic_process_exits_total")
	assert.Contains(t, names, "mic_active_processes")
}

func TestMetrics_DetectorCounters(t *testing.T) {
	m := NewMetrics(nil)
	d := NewSilenceDetector().WithMetrics(m)
	d.SetThreshold(1)

	writeChunks(t, d, []byte{0, 0}, []byte{0, 0, 0, 0}, []byte{10, 10})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ChunksProcessed))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.BytesProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SilenceEvents))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SoundEvents))
}

func TestMetrics_CountsWhileDetectionDisabled(t *testing.T) {
	m := NewMetrics(nil)
	d := NewSilenceDetector().WithMetrics(m)

	writeChunks(t, d, []byte{1, 2, 3})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChunksProcessed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.BytesProcessed))
}

func TestMetrics_ProcessCounters(t *testing.T) {
	m := NewMetrics(nil)

	m.observeLaunch(nil)
	m.observeLaunch(nil)
	m.observeLaunch(errors.New("boom"))
	m.observeExit(ExitReasonStopped)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProcessLaunches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LaunchFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveProcesses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProcessExits.WithLabelValues(ExitReasonStopped)))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.observeChunk(10)
		m.observeEvent(EventSilence)
		m.observeLaunch(nil)
		m.observeExit(ExitReasonNormal)
	})
}
