package cache

import "path/filepath"

const (
	// PinFileName is the file inside the cache root holding the pinned version.
	PinFileName = "version"
	// MarkerFileName is the zero-byte file present while an install may be incomplete.
	MarkerFileName = "installInProgress"
	// InstallDirPrefix prefixes every versioned install directory.
	InstallDirPrefix = "gradle-"
)

// Layout describes the on-disk structure of a cache root.
type Layout struct {
	Root    string
	PinFile string
	Marker  string
}

// NewLayout returns the layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{
		Root:    root,
		PinFile: filepath.Join(root, PinFileName),
		Marker:  filepath.Join(root, MarkerFileName),
	}
}

// InstallDir returns the versioned install directory for version.
func (l Layout) InstallDir(version string) string {
	return filepath.Join(l.Root, InstallDirName(version))
}

// InstallDirName returns the directory name a distribution archive for version unpacks to.
func InstallDirName(version string) string {
	return InstallDirPrefix + version
}
