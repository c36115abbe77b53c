//go:build windows

package launch

import "os"

// ForwardedSignals are the signals grab catches while a child runs.
var ForwardedSignals = []os.Signal{os.Interrupt}

// terminalDelivered is always true: the console already delivers Ctrl+C to
// the child. Catching it only keeps grab alive until the child exits.
func terminalDelivered(os.Signal) bool {
	return true
}

func terminate(p *os.Process) error {
	return p.Kill()
}

func exitCode(state *os.ProcessState) int {
	return state.ExitCode()
}
