package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/grab/internal/logging"
	"github.com/conn-castle/grab/internal/messages"
)

// DefaultWaitDelay bounds how long Wait lingers on the child's I/O after a
// cancellation before it gives up.
const DefaultWaitDelay = 5 * time.Second

// ProcessStrategy runs the entry point as a child process. While the child
// runs it receives the interrupt and termination signals sent to grab.
type ProcessStrategy struct {
	WaitDelay time.Duration
	Log       logrus.FieldLogger
	// Signals, when set, is a channel the caller already registered for
	// ForwardedSignals. Launch forwards from it and leaves registration to
	// the caller, so signals that arrive before the child starts are kept.
	Signals <-chan os.Signal

	notify func(c chan<- os.Signal, sig ...os.Signal)
	stop   func(c chan<- os.Signal)
}

// NewProcessStrategy returns a ProcessStrategy wired to the real signal handlers.
func NewProcessStrategy(log logrus.FieldLogger) *ProcessStrategy {
	return &ProcessStrategy{WaitDelay: DefaultWaitDelay, Log: log}
}

// Launch starts cmd, forwards signals until it exits, and returns its exit code.
func (s *ProcessStrategy) Launch(ctx context.Context, c Command) (int, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.Cancel = func() error { return terminate(cmd.Process) }
	cmd.WaitDelay = s.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	log := s.logger().WithField("entry_point", c.Path)
	sigs := s.Signals
	if sigs == nil {
		own := make(chan os.Signal, 1)
		s.notifyFn()(own, ForwardedSignals...)
		defer s.stopFn()(own)
		sigs = own
	}

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return -1, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
		}
		return -1, fmt.Errorf(messages.LaunchStartFmt, c.Path, err)
	}

	done := make(chan struct{})
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for {
			select {
			case sig := <-sigs:
				if terminalDelivered(sig) {
					log.WithField("signal", sig.String()).Debug(messages.GrabLogSignalFromTerminal)
					continue
				}
				if err := cmd.Process.Signal(sig); err != nil {
					log.WithError(err).WithField("signal", sig.String()).Warn(messages.GrabLogSignalForwardFailed)
					continue
				}
				log.WithField("signal", sig.String()).Debug(messages.GrabLogSignalForwarded)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	<-forwarded

	if err != nil && ctx.Err() != nil {
		return -1, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitCode(exitErr.ProcessState)
		log.WithField("exit_code", code).Debug(messages.GrabLogChildExited)
		return code, nil
	}
	return -1, fmt.Errorf(messages.LaunchWaitFmt, c.Path, err)
}

func (s *ProcessStrategy) notifyFn() func(chan<- os.Signal, ...os.Signal) {
	if s.notify != nil {
		return s.notify
	}
	return signal.Notify
}

func (s *ProcessStrategy) stopFn() func(chan<- os.Signal) {
	if s.stop != nil {
		return s.stop
	}
	return signal.Stop
}

func (s *ProcessStrategy) logger() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logging.Discard()
}
