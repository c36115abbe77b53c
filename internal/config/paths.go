package config

import "path/filepath"

// CacheDirName is the directory under the Gradle user home that holds grab's cache.
const CacheDirName = "grab"

// SettingsFileName is the optional settings file under the Gradle user home.
const SettingsFileName = "grab.toml"

// Paths holds resolved paths derived from the Gradle user home.
type Paths struct {
	GradleUserHome string
	CacheRoot      string
	SettingsPath   string
}

// DefaultPaths returns the grab paths for a Gradle user home.
func DefaultPaths(gradleUserHome string) Paths {
	return Paths{
		GradleUserHome: gradleUserHome,
		CacheRoot:      filepath.Join(gradleUserHome, CacheDirName),
		SettingsPath:   filepath.Join(gradleUserHome, SettingsFileName),
	}
}
