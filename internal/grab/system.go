package grab

import (
	"io"
	"os"
)

// System abstracts the process state a run reads: working directory,
// environment, and standard streams. Tests supply their own to stay parallel-safe.
type System interface {
	Getwd() (string, error)
	Getenv(key string) string
	Environ() []string
	Stdin() io.Reader
	Stdout() io.Writer
	Stderr() io.Writer
}

// RealSystem implements System using the current process.
type RealSystem struct{}

// Getwd returns the current working directory.
func (RealSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Getenv returns the value of the environment variable named by key.
func (RealSystem) Getenv(key string) string {
	return os.Getenv(key)
}

// Environ returns a copy of strings representing the environment.
func (RealSystem) Environ() []string {
	return os.Environ()
}

// Stdin returns the standard input reader.
func (RealSystem) Stdin() io.Reader {
	return os.Stdin
}

// Stdout returns the standard output writer.
func (RealSystem) Stdout() io.Writer {
	return os.Stdout
}

// Stderr returns the standard error writer.
func (RealSystem) Stderr() io.Writer {
	return os.Stderr
}
