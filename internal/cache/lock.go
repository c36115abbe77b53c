package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/conn-castle/grab/internal/messages"
)

var (
	tryLockFn   = tryLockFile
	unlockFn    = unlockFile
	lockPollFn  = pollWait
	lockPollDur = 100 * time.Millisecond
)

// fileLock is an exclusive advisory lock held on an open file.
type fileLock struct {
	file *os.File
}

// acquireFileLock opens or creates path and takes an exclusive lock on it,
// polling until the lock is free, ctx is done, or timeout elapses.
// notice receives one line the first time the lock turns out to be busy.
func acquireFileLock(ctx context.Context, path string, timeout time.Duration, notice io.Writer) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.CacheOpenLockFmt, path, err)
	}
	if err := lockFile(ctx, file, path, timeout, notice); err != nil {
		_ = file.Close()
		return nil, err
	}
	return &fileLock{file: file}, nil
}

func lockFile(ctx context.Context, file *os.File, path string, timeout time.Duration, notice io.Writer) error {
	deadline := time.Now().Add(timeout)
	noticed := false
	for {
		acquired, err := tryLockFn(file)
		if err != nil {
			return fmt.Errorf(messages.CacheLockFmt, path, err)
		}
		if acquired {
			return nil
		}
		if !noticed && notice != nil {
			_, _ = fmt.Fprintf(notice, messages.CacheLockWaitingFmt, path)
			noticed = true
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: "+messages.CacheLockTimeoutFmt, ErrLockTimeout, path, timeout)
		}
		if err := lockPollFn(ctx, lockPollDur); err != nil {
			return fmt.Errorf(messages.CacheLockFmt, path, err)
		}
	}
}

// release unlocks and closes the file lock.
func (l *fileLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	name := l.file.Name()
	if err := unlockFn(l.file); err != nil {
		_ = l.file.Close()
		l.file = nil
		return fmt.Errorf(messages.CacheUnlockFmt, name, err)
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func pollWait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
