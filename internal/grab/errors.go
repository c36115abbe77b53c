package grab

import "errors"

// Kind classifies a failed run.
type Kind int

const (
	// KindInternal is a failure that fits no other kind.
	KindInternal Kind = iota
	// KindConfig covers bad options, settings, and offline runs with nothing cached.
	KindConfig
	// KindNetwork covers version resolution and distribution download.
	KindNetwork
	// KindExtract covers unpacking the distribution and preparing it to run.
	KindExtract
	// KindIO covers local cache failures such as lock timeouts.
	KindIO
	// KindLaunch covers starting or waiting for Gradle.
	KindLaunch
	// KindInterrupted means grab was cancelled before Gradle produced an exit status.
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNetwork:
		return "network"
	case KindExtract:
		return "extract"
	case KindIO:
		return "io"
	case KindLaunch:
		return "launch"
	case KindInterrupted:
		return "interrupted"
	default:
		return "internal"
	}
}

// Error is a classified run failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

func wrap(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
