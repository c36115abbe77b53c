package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/grab/internal/cache"
	"github.com/conn-castle/grab/internal/logging"
	"github.com/conn-castle/grab/internal/messages"
	"github.com/conn-castle/grab/internal/resolve"
)

// ErrInterrupted reports that an install was cancelled through its context.
var ErrInterrupted = errors.New(messages.InstallInterrupted)

// Stage names the install step an error came from.
type Stage string

const (
	// StageDownload covers fetching the distribution archive.
	StageDownload Stage = "download"
	// StageExtract covers the marker, unpacking, and permission fixup.
	StageExtract Stage = "extract"
)

// StageError tags an install failure with its stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage of err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func interrupted(msg string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrInterrupted, msg, cause)
}

// Installer downloads a Gradle distribution and unpacks it into a cache target.
type Installer struct {
	Client    *http.Client
	UserAgent string
	// Out receives user-facing progress lines.
	Out io.Writer
	Log logrus.FieldLogger
	// TempDir holds the download. Empty means the OS temp dir.
	TempDir string

	now func() time.Time
}

// New returns an Installer printing to out.
func New(client *http.Client, out io.Writer, log logrus.FieldLogger) *Installer {
	return &Installer{Client: client, Out: out, Log: log}
}

// Install fetches meta's distribution and lays it out at target. The
// in-progress marker is set before extraction and cleared only after the
// install is complete, so any failure leaves it behind.
func (i *Installer) Install(ctx context.Context, meta resolve.Metadata, target cache.Target) error {
	log := i.logger().WithFields(logrus.Fields{"version": target.Version, "url": meta.DownloadURL})
	_, _ = fmt.Fprintf(i.out(), messages.GrabUpdatingFmt, target.Version)
	log.Info(messages.GrabLogInstallStarted)

	archive, err := i.Download(ctx, meta.DownloadURL, target.Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn(messages.GrabLogTempCleanupFailed)
		}
	}()

	if err := target.Mark(); err != nil {
		return stageErr(StageExtract, err)
	}
	_, _ = fmt.Fprint(i.out(), messages.InstallExtracting)
	if err := extract(ctx, formatFor(meta.DownloadURL), archive, target.Root); err != nil {
		if errors.Is(err, ErrInterrupted) {
			return err
		}
		return stageErr(StageExtract, err)
	}
	info, err := os.Stat(target.Dir)
	if err != nil || !info.IsDir() {
		return stageErr(StageExtract, fmt.Errorf(messages.InstallMissingDistFmt, cache.InstallDirName(target.Version)))
	}
	log.Debug(messages.GrabLogExtracted)

	if err := fixPermissions(target.Dir); err != nil {
		return stageErr(StageExtract, err)
	}
	if err := target.Clear(); err != nil {
		return stageErr(StageExtract, err)
	}
	_, _ = fmt.Fprint(i.out(), messages.GrabUpdateCompleted)
	log.Info(messages.GrabLogInstallFinished)
	return nil
}

func (i *Installer) client() *http.Client {
	if i.Client != nil {
		return i.Client
	}
	return http.DefaultClient
}

func (i *Installer) out() io.Writer {
	if i.Out != nil {
		return i.Out
	}
	return io.Discard
}

func (i *Installer) logger() logrus.FieldLogger {
	if i.Log != nil {
		return i.Log
	}
	return logging.Discard()
}

func (i *Installer) clock() func() time.Time {
	if i.now != nil {
		return i.now
	}
	return time.Now
}
