package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/conn-castle/grab/internal/messages"
	"github.com/conn-castle/grab/internal/resolve"
)

var (
	// ErrNotCached reports that no usable pinned installation exists.
	ErrNotCached = errors.New(messages.CacheNotCached)
	// ErrLockTimeout reports that the pin file lock could not be taken in time.
	ErrLockTimeout = errors.New("cache lock timeout")
)

// DefaultLockTimeout bounds how long Acquire waits for another process.
const DefaultLockTimeout = 10 * time.Minute

var (
	osMkdirAll = os.MkdirAll
	osStat     = os.Stat
	osReadFile = os.ReadFile
)

// Options configures a Store.
type Options struct {
	// LockTimeout bounds lock waits. Zero means DefaultLockTimeout.
	LockTimeout time.Duration
	// Notice receives the one-time "waiting for lock" line. Nil disables it.
	Notice io.Writer
}

// Store owns every file under a cache root.
type Store struct {
	layout      Layout
	lockTimeout time.Duration
	notice      io.Writer
}

// New returns a Store for layout.
func New(layout Layout, opts Options) *Store {
	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &Store{layout: layout, lockTimeout: timeout, notice: opts.Notice}
}

// Layout returns the store's paths.
func (s *Store) Layout() Layout {
	return s.layout
}

// Session is an exclusive hold on the cache root. All mutations of the pin
// file and the marker happen through a Session.
type Session struct {
	layout Layout
	lock   *fileLock
}

// Acquire creates the cache root if needed and takes the exclusive pin file lock.
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	if err := osMkdirAll(s.layout.Root, 0o755); err != nil {
		return nil, fmt.Errorf(messages.CacheCreateRootFmt, s.layout.Root, err)
	}
	lock, err := acquireFileLock(ctx, s.layout.PinFile, s.lockTimeout, s.notice)
	if err != nil {
		return nil, err
	}
	return &Session{layout: s.layout, lock: lock}, nil
}

// Usable reports whether the install for version is complete: its directory
// exists and no install is marked in progress.
func (sess *Session) Usable(version string) (bool, error) {
	if err := checkVersion(version); err != nil {
		return false, err
	}
	pending, err := markerPresent(sess.layout.Marker)
	if err != nil || pending {
		return false, err
	}
	return isDir(sess.layout.InstallDir(version))
}

// Target returns the install target for version within this session.
func (sess *Session) Target(version string) Target {
	return Target{
		Version: version,
		Root:    sess.layout.Root,
		Dir:     sess.layout.InstallDir(version),
		Marker:  sess.layout.Marker,
	}
}

// WritePin replaces the pinned version. The file is truncated first so a
// shorter version never leaves trailing bytes.
func (sess *Session) WritePin(version string) error {
	if err := checkVersion(version); err != nil {
		return err
	}
	file := sess.lock.file
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf(messages.CacheWritePinFmt, sess.layout.PinFile, err)
	}
	if _, err := file.WriteAt([]byte(version), 0); err != nil {
		return fmt.Errorf(messages.CacheWritePinFmt, sess.layout.PinFile, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf(messages.CacheWritePinFmt, sess.layout.PinFile, err)
	}
	return nil
}

// Release drops the lock. It is safe to call more than once.
func (sess *Session) Release() error {
	if sess == nil {
		return nil
	}
	return sess.lock.release()
}

// InstallFunc populates target. It must leave target.Marker in place on failure.
type InstallFunc func(ctx context.Context, target Target) error

// Ensure runs the decide-install-pin cycle for version under the lock and
// returns the usable install directory.
func (s *Store) Ensure(ctx context.Context, version string, install InstallFunc) (dir string, err error) {
	if err := checkVersion(version); err != nil {
		return "", err
	}
	sess, err := s.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if releaseErr := sess.Release(); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	usable, err := sess.Usable(version)
	if err != nil {
		return "", err
	}
	target := sess.Target(version)
	if !usable {
		if err := install(ctx, target); err != nil {
			return "", err
		}
	}
	if err := sess.WritePin(version); err != nil {
		return "", err
	}
	return target.Dir, nil
}

// Pinned returns the pinned version and its install directory without taking
// the lock. Anything short of a complete install is ErrNotCached.
func (s *Store) Pinned() (string, string, error) {
	data, err := osReadFile(s.layout.PinFile)
	if err != nil {
		return "", "", fmt.Errorf(messages.CacheNotCachedFmt, ErrNotCached, fmt.Sprintf(messages.CacheReadPinFmt, s.layout.PinFile, err))
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", "", fmt.Errorf(messages.CacheNotCachedFmt, ErrNotCached, fmt.Sprintf(messages.CachePinEmptyFmt, s.layout.PinFile))
	}
	if !resolve.ValidVersion(version) {
		return "", "", fmt.Errorf(messages.CacheNotCachedFmt, ErrNotCached, fmt.Sprintf(messages.CacheInvalidVersionFmt, version))
	}
	dir := s.layout.InstallDir(version)
	ok, err := isDir(dir)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf(messages.CacheNotCachedFmt, ErrNotCached, fmt.Sprintf(messages.CacheInstallMissingFmt, dir))
	}
	pending, err := markerPresent(s.layout.Marker)
	if err != nil {
		return "", "", err
	}
	if pending {
		return "", "", fmt.Errorf(messages.CacheNotCachedFmt, ErrNotCached, fmt.Sprintf(messages.CacheInstallPendingFmt, dir, s.layout.Marker))
	}
	return version, dir, nil
}

func checkVersion(version string) error {
	if !resolve.ValidVersion(version) {
		return fmt.Errorf(messages.CacheInvalidVersionFmt, version)
	}
	return nil
}

func isDir(path string) (bool, error) {
	info, err := osStat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(messages.CacheCheckInstallFmt, path, err)
	}
	return info.IsDir(), nil
}

func markerPresent(path string) (bool, error) {
	_, err := osStat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(messages.CacheCheckMarkerFmt, path, err)
}
