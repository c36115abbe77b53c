package config

import (
	"errors"
	"strings"

	"github.com/conn-castle/grab/internal/messages"
)

// Flags grab recognizes among the Gradle arguments. They are never removed from
// the forwarded argument list because Gradle understands them too.
const (
	FlagOffline             = "--offline"
	FlagGradleUserHome      = "--gradle-user-home"
	FlagGradleUserHomeShort = "-g"
)

// ErrInvalidGradleHome reports a -g/--gradle-user-home flag with no path after it.
var ErrInvalidGradleHome = errors.New(messages.ConfigInvalidGradleHome)

// Options holds what grab needs from the command line.
type Options struct {
	// Offline skips version resolution and uses the pinned version.
	Offline bool
	// GradleUserHome is the explicit override, empty when not given.
	GradleUserHome string
	// Args are the arguments forwarded to Gradle, in original order.
	Args []string
}

// ParseArgs scans Gradle arguments for the flags grab honors.
// args excludes argv[0]. The last -g/--gradle-user-home wins.
func ParseArgs(args []string) (Options, error) {
	opts := Options{Args: append([]string(nil), args...)}
	expectHome := false
	for _, arg := range args {
		if expectHome {
			if arg == "" {
				return Options{}, ErrInvalidGradleHome
			}
			opts.GradleUserHome = arg
			expectHome = false
			continue
		}
		switch {
		case arg == FlagOffline:
			opts.Offline = true
		case arg == FlagGradleUserHome || arg == FlagGradleUserHomeShort:
			expectHome = true
		case strings.HasPrefix(arg, FlagGradleUserHome+"="):
			opts.GradleUserHome = strings.TrimPrefix(arg, FlagGradleUserHome+"=")
			if opts.GradleUserHome == "" {
				return Options{}, ErrInvalidGradleHome
			}
		}
	}
	if expectHome {
		return Options{}, ErrInvalidGradleHome
	}
	return opts, nil
}
