package mic

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"
)

// ErrCommandNotFound matches a LaunchError whose recorder binary is missing
var ErrCommandNotFound = errors.New("audio command not found")

// LaunchError reports a recorder process that could not be started
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	if e.notFound() {
		return fmt.Sprintf("audio command %q not found, please install it and ensure it's in your PATH", e.Command)
	}
	return fmt.Sprintf("error starting audio process %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCommandNotFound) work for missing binaries
func (e *LaunchError) Is(target error) bool {
	return target == ErrCommandNotFound && e.notFound()
}

func (e *LaunchError) notFound() bool {
	return errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, fs.ErrNotExist)
}

// ExitStatus describes how a recorder process ended
type ExitStatus struct {
	Code   int    // exit code, -1 when terminated by a signal
	Exited bool   // true when the process exited on its own
	Signal string // terminating signal, empty when the process exited
}

// Normal reports an exit with a code and no terminating signal
func (s ExitStatus) Normal() bool {
	return s.Exited && s.Signal == ""
}

// Process is a running recorder
type Process interface {
	Pid() int
	Stdout() io.Reader
	// Stderr is nil when stderr is discarded
	Stderr() io.Reader
	Signal(sig os.Signal) error
	// Wait blocks until the process ends. Call it only after Stdout and
	// Stderr have been drained.
	Wait() (ExitStatus, error)
}

// Launcher starts recorder processes with stdin disabled and stdout piped
type Launcher interface {
	Launch(command string, args []string, pipeStderr bool) (Process, error)
}

// ExecLauncher launches recorders with os/exec
type ExecLauncher struct{}

// Launch starts command. Stderr is piped only when pipeStderr is set and
// discarded otherwise.
func (ExecLauncher) Launch(command string, args []string, pipeStderr bool) (Process, error) {
	cmd := exec.Command(command, args...)

	// Stdin and (unless piped) stderr are connected to the null device
	cmd.Stdin = nil
	cmd.Stderr = nil

	// Set up pipes
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Command: command, Err: fmt.Errorf("failed to create stdout pipe: %w", err)}
	}

	var stderr io.ReadCloser
	if pipeStderr {
		stderr, err = cmd.StderrPipe()
		if err != nil {
			return nil, &LaunchError{Command: command, Err: fmt.Errorf("failed to create stderr pipe: %w", err)}
		}
	}

	// Start the command
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Command: command, Err: err}
	}

	return &execProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) Stderr() io.Reader {
	if p.stderr == nil {
		return nil
	}
	return p.stderr
}

func (p *execProcess) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

func (p *execProcess) Wait() (ExitStatus, error) {
	err := p.cmd.Wait()

	state := p.cmd.ProcessState
	if state == nil {
		return ExitStatus{Code: -1}, err
	}

	status := ExitStatus{Code: state.ExitCode(), Exited: state.Exited()}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		status.Signal = ws.Signal().String()
		status.Exited = false
	}

	// A non-zero exit code is reported through status, not as an error
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		err = nil
	}

	return status, err
}
