//go:build !windows

package mic

import (
	"os"
	"syscall"
)

var (
	terminateSignal os.Signal = syscall.SIGTERM
	suspendSignal   os.Signal = syscall.SIGSTOP
	continueSignal  os.Signal = syscall.SIGCONT
)
