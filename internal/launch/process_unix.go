//go:build !windows

package launch

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// ForwardedSignals are the signals passed on to a running child.
var ForwardedSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

var foreground = inForegroundGroup

// terminalDelivered reports whether sig already reached the child. Ctrl+C
// signals the terminal's whole foreground process group, and the child
// shares grab's group.
func terminalDelivered(sig os.Signal) bool {
	return sig == syscall.SIGINT && foreground()
}

func inForegroundGroup() bool {
	pgrp := unix.Getpgrp()
	for _, fd := range []int{0, 1, 2} {
		fg, err := unix.IoctlGetInt(fd, unix.TIOCGPGRP)
		if err == nil {
			return fg == pgrp
		}
	}
	return false
}

func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

// exitCode maps a signal death to 128+signal the way POSIX shells report it.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
