// Package launch runs an installed Gradle distribution as a child process.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/grab/internal/logging"
	"github.com/conn-castle/grab/internal/messages"
)

var (
	// ErrEntryPointMissing reports an install without its launcher script.
	ErrEntryPointMissing = errors.New(messages.LaunchEntryPointMissing)
	// ErrInterrupted reports that the launch was cancelled through its context
	// rather than the child exiting on its own.
	ErrInterrupted = errors.New(messages.LaunchInterrupted)
)

var osStat = os.Stat

// Command is one fully resolved child invocation.
type Command struct {
	Path   string
	Args   []string
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Strategy is how an entry point gets invoked.
type Strategy interface {
	Launch(ctx context.Context, cmd Command) (int, error)
}

// Launcher starts Gradle from an install directory.
type Launcher struct {
	Strategy Strategy
	// GOOS selects the entry point. Empty means runtime.GOOS.
	GOOS string
	// Dir is the child's working directory. Empty means the current one.
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    logrus.FieldLogger
}

// Run launches the distribution in installDir with args and returns the
// child's exit status.
func (l *Launcher) Run(ctx context.Context, installDir string, args []string) (int, error) {
	if l.Strategy == nil {
		return -1, errors.New(messages.LaunchStrategyRequired)
	}
	goos := l.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	entry := EntryPointFor(installDir, goos)
	if _, err := osStat(entry.Script); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return -1, fmt.Errorf(messages.LaunchEntryPointMissingFmt, ErrEntryPointMissing, entry.Script)
		}
		return -1, fmt.Errorf(messages.LaunchCheckEntryPointFmt, entry.Script, err)
	}

	argv := make([]string, 0, len(entry.Args)+len(args))
	argv = append(argv, entry.Args...)
	argv = append(argv, args...)
	l.logger().WithFields(logrus.Fields{"entry_point": entry.Path, "args": len(args)}).Debug(messages.GrabLogLaunching)

	return l.Strategy.Launch(ctx, Command{
		Path:   entry.Path,
		Args:   argv,
		Dir:    l.Dir,
		Env:    l.Env,
		Stdin:  l.Stdin,
		Stdout: l.Stdout,
		Stderr: l.Stderr,
	})
}

func (l *Launcher) logger() logrus.FieldLogger {
	if l.Log != nil {
		return l.Log
	}
	return logging.Discard()
}
