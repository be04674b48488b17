package mic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrAlreadyStarted is returned by Start in strict mode while a recorder is running
	ErrAlreadyStarted = errors.New("duplicate calls to Start: microphone already started")

	// ErrClosed is returned by Start after Close
	ErrClosed = errors.New("microphone closed")
)

// State is the lifecycle state of a Microphone
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Mic is the capture capability set
type Mic interface {
	// Start launches the recorder (arecord, rec or sox) and pipes its
	// output into the audio stream
	Start() error
	// Stop terminates the recorder with SIGTERM
	Stop() error
	// Pause suspends the recorder with SIGSTOP and pauses the audio stream
	Pause() error
	// Resume continues the recorder with SIGCONT and resumes the audio stream
	Resume() error
	// AudioStream returns the stream carrying both the captured audio and
	// every notification:
	//   - silence: raised once when ExitOnSilence consecutive silent chunks were seen
	//   - sound: raised when speech follows such a silence
	//   - audioProcessExitComplete: raised when the recorder exits on its own
	//   - startComplete, stopComplete, pauseComplete, resumeComplete
	//   - error: raised when the recorder cannot be launched
	AudioStream() *SilenceDetector
}

// Microphone supervises at most one recorder process at a time
type Microphone struct {
	opts     Options
	goos     string
	resolver Resolver
	launcher Launcher
	logger   *slog.Logger
	metrics  *Metrics
	monitor  *ResourceMonitor
	detector *SilenceDetector

	mu      sync.Mutex
	proc    Process
	state   State
	session string
	closed  bool
}

var _ Mic = (*Microphone)(nil)

// NewMicrophone creates an idle Microphone. Zero fields of opts take their
// DefaultOptions value; the options are validated by Start.
func NewMicrophone(opts Options) *Microphone {
	opts = opts.withDefaults()

	detector := NewSilenceDetector().WithDebug(opts.Debug)
	detector.SetThreshold(opts.ExitOnSilence)

	return &Microphone{
		opts:     opts,
		goos:     runtime.GOOS,
		resolver: DefaultResolver,
		launcher: ExecLauncher{},
		logger:   slog.Default(),
		monitor:  GetMonitor(),
		detector: detector,
	}
}

// WithLogger sets the logger for the microphone and its audio stream
func (m *Microphone) WithLogger(logger *slog.Logger) *Microphone {
	if logger == nil {
		logger = slog.Default()
	}
	m.logger = logger
	m.detector.WithLogger(logger)
	return m
}

// WithMetrics sets the Prometheus collectors for the microphone and its audio stream
func (m *Microphone) WithMetrics(metrics *Metrics) *Microphone {
	m.metrics = metrics
	m.detector.WithMetrics(metrics)
	return m
}

// WithResolver replaces the platform-to-recorder lookup
func (m *Microphone) WithResolver(r Resolver) *Microphone {
	m.resolver = r
	return m
}

// WithLauncher replaces the process launcher
func (m *Microphone) WithLauncher(l Launcher) *Microphone {
	m.launcher = l
	return m
}

// WithPlatform overrides the GOOS passed to the resolver
func (m *Microphone) WithPlatform(goos string) *Microphone {
	m.goos = goos
	return m
}

// WithMonitor replaces the process-wide resource monitor
func (m *Microphone) WithMonitor(monitor *ResourceMonitor) *Microphone {
	m.monitor = monitor
	return m
}

// Options returns the options snapshot
func (m *Microphone) Options() Options {
	return m.opts
}

// AudioStream returns the long-lived audio stream shared by every session
func (m *Microphone) AudioStream() *SilenceDetector {
	return m.detector
}

// State returns the current lifecycle state
func (m *Microphone) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID returns the ID of the current or most recent capture session
func (m *Microphone) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Start launches the recorder. While a recorder is running, Start returns
// ErrAlreadyStarted in strict mode and nil otherwise. A recorder that cannot
// be launched is reported as an EventError notification when a handler is
// registered (logged otherwise) and returned as a *LaunchError.
func (m *Microphone) Start() error {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	if m.proc != nil {
		session := m.session
		m.mu.Unlock()
		if m.opts.Strict {
			return ErrAlreadyStarted
		}
		m.logDebug("Duplicate call to Start ignored", "session", session)
		return nil
	}

	if err := m.opts.Validate(); err != nil {
		m.mu.Unlock()
		return err
	}

	command, args, err := m.resolver(m.opts, m.goos)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("resolve audio command: %w", err)
	}

	proc, err := m.launcher.Launch(command, args, m.opts.Debug)
	if err != nil {
		m.mu.Unlock()

		var launchErr *LaunchError
		if !errors.As(err, &launchErr) {
			launchErr = &LaunchError{Command: command, Err: err}
		}
		m.metrics.observeLaunch(launchErr)
		m.monitor.RecordFailure()
		m.reportError(launchErr, "")
		return launchErr
	}

	session := uuid.NewString()
	m.proc = proc
	m.state = StateRunning
	m.session = session
	m.detector.setSession(session)
	m.mu.Unlock()

	m.metrics.observeLaunch(nil)
	m.monitor.TrackProcess(proc.Pid())

	// Exit handling waits for startComplete so it is always delivered first
	ready := make(chan struct{})
	go m.supervise(proc, session, ready)

	m.logDebug("Microphone started", "session", session, "command", command, "args", args, "pid", proc.Pid())
	m.detector.emit(Notification{Event: EventStart, Session: session})
	close(ready)

	return nil
}

// Stop terminates the recorder. It is a no-op while idle.
func (m *Microphone) Stop() error {
	m.mu.Lock()

	proc, session, state := m.proc, m.session, m.state
	if proc == nil {
		m.mu.Unlock()
		return nil
	}

	if err := signalProcess(proc, terminateSignal); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("stop audio process: %w", err)
	}

	// A suspended recorder only acts on SIGTERM once continued
	if state == StatePaused && continueSignal != nil {
		_ = signalProcess(proc, continueSignal)
	}

	m.proc = nil
	m.state = StateIdle
	m.mu.Unlock()

	if state == StatePaused {
		m.detector.Resume()
	}

	m.logDebug("Microphone stopped", "session", session)
	m.detector.emit(Notification{Event: EventStop, Session: session})

	return nil
}

// Pause suspends the recorder and pauses the audio stream. Where the
// platform cannot suspend processes only the stream is paused. It is a
// no-op while idle.
func (m *Microphone) Pause() error {
	m.mu.Lock()

	proc, session := m.proc, m.session
	if proc == nil {
		m.mu.Unlock()
		return nil
	}

	suspended, err := trySignal(proc, suspendSignal)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("pause audio process: %w", err)
	}

	m.state = StatePaused
	m.mu.Unlock()

	m.detector.Pause()

	if suspended {
		m.logDebug("Microphone paused", "session", session)
	} else {
		m.logDebug("Microphone paused (stream level only)", "session", session)
	}
	m.detector.emit(Notification{Event: EventPause, Session: session})

	return nil
}

// Resume continues the recorder and resumes the audio stream. It is a
// no-op while idle.
func (m *Microphone) Resume() error {
	m.mu.Lock()

	proc, session := m.proc, m.session
	if proc == nil {
		m.mu.Unlock()
		return nil
	}

	continued, err := trySignal(proc, continueSignal)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("resume audio process: %w", err)
	}

	m.state = StateRunning
	m.mu.Unlock()

	m.detector.Resume()

	if continued {
		m.logDebug("Microphone resumed", "session", session)
	} else {
		m.logDebug("Microphone resumed (stream level only)", "session", session)
	}
	m.detector.emit(Notification{Event: EventResume, Session: session})

	return nil
}

// Close stops the recorder and ends the audio stream
func (m *Microphone) Close() error {
	err := m.Stop()

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	if cerr := m.detector.Close(); err == nil {
		err = cerr
	}
	return err
}

// supervise pumps the recorder's output until both pipes close, then reaps it
func (m *Microphone) supervise(proc Process, session string, ready <-chan struct{}) {
	var g errgroup.Group

	g.Go(func() error {
		return m.pumpAudio(proc.Stdout())
	})
	if stderr := proc.Stderr(); stderr != nil {
		g.Go(func() error {
			return m.pumpInfo(stderr, session)
		})
	}

	if err := g.Wait(); err != nil {
		m.logger.Warn("audio process pipe failed", "session", session, "error", err)
	}

	status, err := proc.Wait()
	<-ready
	m.handleExit(proc, session, status, err)
}

// pumpAudio copies the recorder's stdout into the audio stream, one chunk per read
func (m *Microphone) pumpAudio(r io.Reader) error {
	buf := make([]byte, m.opts.BufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := m.detector.Write(buf[:n]); werr != nil {
				// Stream closed: keep draining so the recorder never blocks
				_, _ = io.Copy(io.Discard, r)
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read audio: %w", err)
		}
	}
}

// pumpInfo logs the recorder's stderr line by line
func (m *Microphone) pumpInfo(r io.Reader, session string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m.logger.Debug("Received Info: "+scanner.Text(), "session", session)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("read info: %w", err)
	}
	return nil
}

// handleExit clears the handle of a recorder that ended on its own and raises
// EventProcessExit when it exited normally. Recorders ended by Stop are
// already detached and raise nothing.
func (m *Microphone) handleExit(proc Process, session string, status ExitStatus, waitErr error) {
	defer m.monitor.UntrackProcess(proc.Pid())

	m.mu.Lock()
	current := m.proc == proc
	wasPaused := current && m.state == StatePaused
	if current {
		m.proc = nil
		m.state = StateIdle
	}
	m.mu.Unlock()

	if wasPaused {
		m.detector.Resume()
	}

	if waitErr != nil {
		m.logger.Warn("wait for audio process", "session", session, "error", waitErr)
	}

	switch {
	case !current:
		m.metrics.observeExit(ExitReasonStopped)
		return
	case !status.Normal():
		m.metrics.observeExit(ExitReasonSignal)
		m.logDebug("recording audio process was terminated", "session", session, "signal", status.Signal)
		return
	}

	m.metrics.observeExit(ExitReasonNormal)
	m.logDebug(fmt.Sprintf("recording audio process has exited with code = %d", status.Code), "session", session)
	m.detector.emit(Notification{Event: EventProcessExit, Session: session})
}

// reportError raises EventError when someone listens and logs otherwise
func (m *Microphone) reportError(err error, session string) {
	if m.detector.ListenerCount(EventError) > 0 {
		m.detector.emit(Notification{Event: EventError, Err: err, Session: session})
		return
	}
	m.logger.Error(err.Error(), "session", session)
}

func (m *Microphone) logDebug(msg string, args ...any) {
	if m.opts.Debug {
		m.logger.Debug(msg, args...)
	}
}

// signalProcess sends sig, ignoring recorders that have already exited
func signalProcess(proc Process, sig os.Signal) error {
	if err := proc.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// trySignal sends sig when the platform supports it. It reports false
// without error when the signal is unavailable.
func trySignal(proc Process, sig os.Signal) (bool, error) {
	if sig == nil {
		return false, nil
	}
	if err := signalProcess(proc, sig); err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
