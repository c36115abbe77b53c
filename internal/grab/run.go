// Package grab wires version resolution, the cache, the installer, and the
// launcher into a single run.
package grab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/conn-castle/grab/internal/cache"
	"github.com/conn-castle/grab/internal/config"
	"github.com/conn-castle/grab/internal/install"
	"github.com/conn-castle/grab/internal/launch"
	"github.com/conn-castle/grab/internal/logging"
	"github.com/conn-castle/grab/internal/messages"
	"github.com/conn-castle/grab/internal/resolve"
)

// ExitFailure is the exit code for every failure that is not Gradle's own.
const ExitFailure = 1

var (
	notifyContext = signal.NotifyContext
	notifySignals = signal.Notify
	stopSignals   = signal.Stop
)

// Options configures a run.
type Options struct {
	// Args are the command-line arguments after the program name.
	Args   []string
	System System
	// Version is grab's own build version. It is only logged.
	Version string
	// HTTPClient overrides the client built from the settings.
	HTTPClient *http.Client
	// Strategy overrides how Gradle is started.
	Strategy launch.Strategy
}

// Run resolves, installs if needed, and launches Gradle. It returns Gradle's
// exit code, or ExitFailure together with a *Error.
func Run(ctx context.Context, opts Options) (int, error) {
	sys := opts.System
	if sys == nil {
		return ExitFailure, wrap(KindInternal, errors.New(messages.GrabSystemRequired))
	}

	cli, err := config.ParseArgs(opts.Args)
	if err != nil {
		return ExitFailure, wrap(KindConfig, err)
	}
	home, err := config.ResolveGradleUserHome(cli, sys.Getenv)
	if err != nil {
		return ExitFailure, wrap(KindConfig, err)
	}
	paths := config.DefaultPaths(home)
	settings, err := config.LoadSettings(paths.SettingsPath, sys.Getenv)
	if err != nil {
		return ExitFailure, wrap(KindConfig, err)
	}
	logger, err := logging.New(logging.Options{Level: settings.LogLevel, File: settings.LogFile, Stderr: sys.Stderr()})
	if err != nil {
		return ExitFailure, wrap(KindConfig, err)
	}

	runID := uuid.NewString()
	log := logger.WithFields(logging.BaseFields("run", runID))
	log.WithFields(logrus.Fields{
		"grab_version": opts.Version,
		"offline":      cli.Offline,
		"cache_root":   paths.CacheRoot,
	}).Debug(messages.GrabLogStartup)
	log.WithFields(logrus.Fields{
		"version_url":  settings.VersionURL,
		"lock_timeout": settings.LockTimeout.String(),
		"http_timeout": settings.HTTPTimeout.String(),
	}).Debug(messages.GrabLogSettingsLoaded)

	workDir, err := sys.Getwd()
	if err != nil {
		return ExitFailure, wrap(KindInternal, fmt.Errorf(messages.GrabResolveWorkingDirFmt, err))
	}

	r := &runner{
		sys:      sys,
		opts:     opts,
		settings: settings,
		store:    cache.New(cache.NewLayout(paths.CacheRoot), cache.Options{LockTimeout: settings.LockTimeout, Notice: sys.Stdout()}),
		client:   opts.HTTPClient,
		download: opts.HTTPClient,
		log:      log,
		runID:    runID,
	}
	if r.client == nil {
		r.client = newMetadataClient(settings.HTTPTimeout)
		r.download = newDownloadClient(settings.HTTPTimeout)
	}

	prepCtx, stop := notifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	installDir, err := r.prepare(prepCtx, cli.Offline)
	if err != nil {
		stop()
		return ExitFailure, err
	}

	// The launcher's channel is registered before the prepare handler is
	// released so no signal falls back to the default action in between.
	strategy := opts.Strategy
	if strategy == nil {
		sigs := make(chan os.Signal, 1)
		notifySignals(sigs, launch.ForwardedSignals...)
		defer stopSignals(sigs)
		ps := launch.NewProcessStrategy(log)
		ps.Signals = sigs
		strategy = ps
	}
	interrupted := prepCtx.Err()
	stop()
	if interrupted != nil {
		return ExitFailure, wrap(KindInterrupted, fmt.Errorf(messages.GrabInterruptedFmt, messages.GrabInterrupted, interrupted))
	}
	launcher := &launch.Launcher{
		Strategy: strategy,
		Dir:      workDir,
		Env:      sys.Environ(),
		Stdin:    sys.Stdin(),
		Stdout:   sys.Stdout(),
		Stderr:   sys.Stderr(),
		Log:      log,
	}
	code, err := launcher.Run(ctx, installDir, cli.Args)
	if err != nil {
		if errors.Is(err, launch.ErrInterrupted) {
			return ExitFailure, wrap(KindInterrupted, fmt.Errorf(messages.GrabInterruptedWaitingFmt, err))
		}
		return ExitFailure, wrap(KindLaunch, fmt.Errorf(messages.GrabLaunchFailedFmt, err))
	}
	log.WithField("exit_code", code).Debug(messages.GrabLogChildExited)
	return code, nil
}

type runner struct {
	sys      System
	opts     Options
	settings config.Settings
	store    *cache.Store
	client   *http.Client
	download *http.Client
	log      logrus.FieldLogger
	runID    string
}

// prepare returns the install directory to launch from.
func (r *runner) prepare(ctx context.Context, offline bool) (string, error) {
	if offline {
		return r.pinned()
	}
	return r.update(ctx)
}

func (r *runner) pinned() (string, error) {
	version, dir, err := r.store.Pinned()
	if err != nil {
		if errors.Is(err, cache.ErrNotCached) {
			return "", wrap(KindConfig, fmt.Errorf(messages.GrabOfflineNotCachedFmt, err))
		}
		return "", wrap(KindIO, fmt.Errorf(messages.GrabLaunchFailedFmt, err))
	}
	r.log.WithField("version", version).Debug(messages.GrabLogOfflineResolved)
	return dir, nil
}

func (r *runner) update(ctx context.Context) (string, error) {
	userAgent := fmt.Sprintf(messages.GrabUserAgentFmt, r.opts.Version)
	meta, err := resolve.New(r.client, userAgent).Resolve(ctx, r.settings.VersionURL)
	if err != nil {
		return "", classifyUpdate(ctx, KindNetwork, err)
	}
	r.log.WithFields(logrus.Fields{"version": meta.Version, "url": meta.DownloadURL}).Debug(messages.GrabLogResolved)

	layout := r.store.Layout()
	installer := install.New(r.download, r.sys.Stdout(), r.log.WithFields(logging.InstallFields(r.runID, meta.Version, layout.Root)))
	installer.UserAgent = userAgent
	dir, err := r.store.Ensure(ctx, meta.Version, func(ctx context.Context, target cache.Target) error {
		return installer.Install(ctx, meta, target)
	})
	if err != nil {
		return "", classifyUpdate(ctx, KindIO, err)
	}
	r.log.WithField("install_dir", dir).Debug(messages.GrabLogCached)
	return dir, nil
}

// classifyUpdate maps a resolve, cache, or install failure to its Kind.
// fallback applies when the failure carries no install stage.
func classifyUpdate(ctx context.Context, fallback Kind, err error) error {
	if errors.Is(err, install.ErrInterrupted) || ctx.Err() != nil {
		return wrap(KindInterrupted, fmt.Errorf(messages.GrabInterruptedFmt, messages.GrabInterrupted, err))
	}
	wrapped := fmt.Errorf(messages.GrabUpdateFailedFmt, err)
	switch install.StageOf(err) {
	case install.StageDownload:
		return wrap(KindNetwork, wrapped)
	case install.StageExtract:
		return wrap(KindExtract, wrapped)
	}
	return wrap(fallback, wrapped)
}
