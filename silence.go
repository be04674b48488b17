package mic

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// speechAmplitude is the absolute sample value above which a sample is speech
const speechAmplitude = 2000

// SilenceDetector is the audio stream of a capture session. Its input side
// (Write) classifies 16-bit little-endian PCM chunks as silence or speech and
// raises edge-triggered EventSilence/EventSound notifications; its output
// side (Read) yields every written byte unchanged and in order.
//
// A zero threshold disables classification entirely.
type SilenceDetector struct {
	emitter

	mu          sync.Mutex
	threshold   int
	consecutive int
	session     string
	debug       bool
	logger      *slog.Logger
	metrics     *Metrics

	qmu    sync.Mutex
	ready  *sync.Cond
	queue  [][]byte
	queued int
	paused bool
	closed bool
}

// NewSilenceDetector creates a detector with detection disabled
func NewSilenceDetector() *SilenceDetector {
	d := &SilenceDetector{logger: slog.Default()}
	d.ready = sync.NewCond(&d.qmu)
	return d
}

// WithDebug enables per-chunk diagnostic logging
func (d *SilenceDetector) WithDebug(debug bool) *SilenceDetector {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debug = debug
	return d
}

// WithLogger sets the logger used for diagnostics
func (d *SilenceDetector) WithLogger(logger *slog.Logger) *SilenceDetector {
	if logger == nil {
		logger = slog.Default()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
	return d
}

// WithMetrics sets the collectors updated for every chunk and event
func (d *SilenceDetector) WithMetrics(m *Metrics) *SilenceDetector {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics = m
	return d
}

// Threshold returns the number of consecutive silent chunks that raises EventSilence
func (d *SilenceDetector) Threshold() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.threshold
}

// SetThreshold sets the silence threshold. Negative values are treated as 0.
func (d *SilenceDetector) SetThreshold(chunks int) {
	if chunks < 0 {
		chunks = 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = chunks
}

// ConsecutiveSilence returns the number of consecutive silent chunks seen so far
func (d *SilenceDetector) ConsecutiveSilence() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.consecutive
}

// IncrementSilence bumps the consecutive silence count and returns the new value
func (d *SilenceDetector) IncrementSilence() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consecutive++
	return d.consecutive
}

// ResetSilence sets the consecutive silence count back to 0
func (d *SilenceDetector) ResetSilence() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consecutive = 0
}

func (d *SilenceDetector) setSession(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.session = id
}

// Process classifies chunk and returns it unchanged. Empty chunks are ignored.
func (d *SilenceDetector) Process(chunk []byte) []byte {
	if len(chunk) == 0 {
		return chunk
	}

	d.mu.Lock()
	metrics := d.metrics
	threshold := d.threshold
	if threshold == 0 {
		d.mu.Unlock()
		metrics.observeChunk(len(chunk))
		return chunk
	}

	var ev Event
	speech := containsSpeech(chunk)
	if speech {
		if d.consecutive > threshold {
			ev = EventSound
		}
		d.consecutive = 0
	} else {
		d.consecutive++
		if d.consecutive == threshold {
			ev = EventSilence
		}
	}
	count := d.consecutive
	debug, logger, session := d.debug, d.logger, d.session
	d.mu.Unlock()

	metrics.observeChunk(len(chunk))

	if debug {
		if speech {
			logger.Debug("Found speech block", "session", session)
		} else {
			logger.Debug(fmt.Sprintf("Found silence block: %d of %d", count, threshold), "session", session)
		}
	}

	if ev != "" {
		metrics.observeEvent(ev)
		d.emit(Notification{Event: ev, Session: session})
	}

	return chunk
}

// Write classifies p and queues a copy of it for readers. It never blocks on
// readers and fails only once the stream is closed.
func (d *SilenceDetector) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if d.isClosed() {
		return 0, io.ErrClosedPipe
	}

	chunk := append([]byte(nil), d.Process(p)...)

	d.qmu.Lock()
	defer d.qmu.Unlock()

	if d.closed {
		return 0, io.ErrClosedPipe
	}
	d.queue = append(d.queue, chunk)
	d.queued += len(chunk)
	d.ready.Broadcast()

	return len(p), nil
}

// Read reads queued audio. It blocks while nothing is queued or the stream
// is paused, and returns io.EOF once the stream is closed and drained.
func (d *SilenceDetector) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	d.qmu.Lock()
	defer d.qmu.Unlock()

	for (len(d.queue) == 0 || d.paused) && !d.closed {
		d.ready.Wait()
	}
	if len(d.queue) == 0 {
		return 0, io.EOF
	}

	head := d.queue[0]
	n := copy(p, head)
	if n == len(head) {
		d.queue[0] = nil
		d.queue = d.queue[1:]
	} else {
		d.queue[0] = head[n:]
	}
	d.queued -= n

	return n, nil
}

// Buffered returns the number of bytes written but not yet read
func (d *SilenceDetector) Buffered() int {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	return d.queued
}

// Pause stops readers from receiving data. Writes are still accepted.
func (d *SilenceDetector) Pause() {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	d.paused = true
}

// Resume lets readers receive data again
func (d *SilenceDetector) Resume() {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	d.paused = false
	d.ready.Broadcast()
}

// IsPaused reports whether the output side is paused
func (d *SilenceDetector) IsPaused() bool {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	return d.paused
}

// Close ends the stream. Queued data stays readable, even while paused.
func (d *SilenceDetector) Close() error {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	d.closed = true
	d.ready.Broadcast()
	return nil
}

func (d *SilenceDetector) isClosed() bool {
	d.qmu.Lock()
	defer d.qmu.Unlock()
	return d.closed
}

// containsSpeech reports whether any complete sample in chunk exceeds
// speechAmplitude. An odd trailing byte is ignored.
func containsSpeech(chunk []byte) bool {
	for i := 0; i+1 < len(chunk); i += 2 {
		sample := decodeSample(chunk[i], chunk[i+1])
		if sample > speechAmplitude || sample < -speechAmplitude {
			return true
		}
	}
	return false
}

// decodeSample decodes a little-endian 16-bit sample. A high byte of exactly
// 128 is kept non-negative.
func decodeSample(lo, hi byte) int {
	var sample int
	if hi > 128 {
		sample = (int(hi) - 256) * 256
	} else {
		sample = int(hi) * 256
	}
	return sample + int(lo)
}
