//go:build windows

package mic

import "os"

// Windows has no SIGTERM/SIGSTOP/SIGCONT: the recorder is killed on stop and
// pause/resume only act on the audio stream.
var (
	terminateSignal os.Signal = os.Kill
	suspendSignal   os.Signal
	continueSignal  os.Signal
)
