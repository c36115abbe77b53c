//go:build !windows

package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/conn-castle/grab/internal/messages"
)

// fixPermissions gives bin/gradle owner-execute when it is owner-readable.
// A missing script is left for the launcher to report.
func fixPermissions(installDir string) error {
	script := filepath.Join(installDir, "bin", "gradle")
	info, err := os.Stat(script)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.InstallStatScriptFmt, script, err)
	}
	mode := info.Mode().Perm()
	if mode&0o400 != 0 {
		mode |= 0o100
	}
	if err := os.Chmod(script, mode); err != nil {
		return fmt.Errorf(messages.InstallChmodFmt, script, err)
	}
	return nil
}
