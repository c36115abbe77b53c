package cache

import (
	"errors"
	"fmt"
	"os"

	"github.com/conn-castle/grab/internal/messages"
)

// Target is where an installer may write: the extraction root, the expected
// install directory, and the in-progress marker. It is only valid while the
// Session that produced it holds the lock.
type Target struct {
	Version string
	Root    string
	Dir     string
	Marker  string
}

// Mark creates the in-progress marker if it does not already exist.
func (t Target) Mark() error {
	file, err := os.OpenFile(t.Marker, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf(messages.CacheCreateMarkerFmt, t.Marker, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf(messages.CacheCreateMarkerFmt, t.Marker, err)
	}
	return nil
}

// Clear removes the in-progress marker. A missing marker is not an error.
func (t Target) Clear() error {
	if err := os.Remove(t.Marker); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.CacheRemoveMarkerFmt, t.Marker, err)
	}
	return nil
}
