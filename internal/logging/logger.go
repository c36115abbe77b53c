// Package logging builds grab's diagnostic logger.
//
// Diagnostics are separate from the status lines grab prints for the user;
// they stay quiet unless GRAB_LOG_LEVEL or log_level asks for more.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/conn-castle/grab/internal/messages"
)

// Options configures the logger.
type Options struct {
	Level string
	// File, when set, receives JSON logs through a rotating writer instead of Stderr.
	File   string
	Stderr io.Writer
}

const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
)

// New builds a logger from opts. A log file that cannot be prepared falls back
// to Stderr with a warning rather than failing the run.
func New(opts Options) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf(messages.LoggingParseLevelFmt, opts.Level, err)
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	logger := logrus.New()
	logger.SetLevel(level)

	if opts.File == "" {
		logger.SetOutput(stderr)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		return logger, nil
	}

	output, outErr := buildFileOutput(opts.File)
	if outErr != nil {
		_, _ = fmt.Fprintf(stderr, messages.LoggingFallbackFmt, outErr)
		logger.SetOutput(stderr)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		logger.WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   opts.File,
		}).Warn(outErr.Error())
		return logger, nil
	}
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func buildFileOutput(path string) (io.Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf(messages.LoggingCreateDirFmt, dir, err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		LocalTime:  true,
	}, nil
}
