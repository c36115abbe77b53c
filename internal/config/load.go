package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/grab/internal/messages"
)

// Environment keys read by grab.
const (
	EnvConfig         = "GRAB_CONFIG"
	EnvVersionURL     = "GRAB_VERSION_URL"
	EnvLockTimeout    = "GRAB_LOCK_TIMEOUT"
	EnvHTTPTimeout    = "GRAB_HTTP_TIMEOUT"
	EnvLogLevel       = "GRAB_LOG_LEVEL"
	EnvLogFile        = "GRAB_LOG_FILE"
	EnvGradleUserHome = "GRADLE_USER_HOME"
)

// DefaultVersionURL is the endpoint describing the current Gradle release.
const DefaultVersionURL = "https://services.gradle.org/versions/current"

const (
	defaultLockTimeout = 10 * time.Minute
	defaultHTTPTimeout = 30 * time.Second
	defaultLogLevel    = "warn"
)

// ErrInvalidSettings wraps every settings validation failure so callers can
// tell a bad settings file apart from filesystem errors.
var ErrInvalidSettings = errors.New("invalid grab settings")

var userHomeDir = homedir.Dir

// Settings are grab's tunables after merging defaults, the settings file, and the environment.
type Settings struct {
	VersionURL  string
	LockTimeout time.Duration
	HTTPTimeout time.Duration
	LogLevel    string
	LogFile     string
}

// fileSettings mirrors grab.toml. Durations stay strings so they can be
// written as "30s" or "10m".
type fileSettings struct {
	VersionURL  string `toml:"version_url"`
	LockTimeout string `toml:"lock_timeout"`
	HTTPTimeout string `toml:"http_timeout"`
	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		VersionURL:  DefaultVersionURL,
		LockTimeout: defaultLockTimeout,
		HTTPTimeout: defaultHTTPTimeout,
		LogLevel:    defaultLogLevel,
	}
}

// LoadSettings reads the settings file (if any) and applies environment overrides.
// defaultPath may be missing; a path named by GRAB_CONFIG must exist.
func LoadSettings(defaultPath string, getenv func(string) string) (Settings, error) {
	settings := DefaultSettings()

	path := defaultPath
	explicit := false
	if override := strings.TrimSpace(getenv(EnvConfig)); override != "" {
		path = override
		explicit = true
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		settings, err = ParseSettings(data, path, settings)
		if err != nil {
			return Settings{}, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Settings{}, fmt.Errorf(messages.ConfigReadSettingsFmt, path, err)
	}

	settings, err = applyEnv(settings, getenv)
	if err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// ParseSettings decodes grab.toml data on top of base. Unknown keys are rejected.
// source is used in error messages.
func ParseSettings(data []byte, source string, base Settings) (Settings, error) {
	var raw fileSettings
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		return Settings{}, fmt.Errorf("%w: "+messages.ConfigInvalidSettingsFmt, ErrInvalidSettings, source, err)
	}

	settings := base
	if raw.VersionURL != "" {
		if err := validateURL("version_url", raw.VersionURL); err != nil {
			return Settings{}, err
		}
		settings.VersionURL = raw.VersionURL
	}
	if raw.LockTimeout != "" {
		d, err := parsePositiveDuration("lock_timeout", raw.LockTimeout)
		if err != nil {
			return Settings{}, err
		}
		settings.LockTimeout = d
	}
	if raw.HTTPTimeout != "" {
		d, err := parsePositiveDuration("http_timeout", raw.HTTPTimeout)
		if err != nil {
			return Settings{}, err
		}
		settings.HTTPTimeout = d
	}
	if raw.LogLevel != "" {
		settings.LogLevel = raw.LogLevel
	}
	if raw.LogFile != "" {
		settings.LogFile = raw.LogFile
	}
	return settings, nil
}

func applyEnv(settings Settings, getenv func(string) string) (Settings, error) {
	if v := strings.TrimSpace(getenv(EnvVersionURL)); v != "" {
		if err := validateURL(EnvVersionURL, v); err != nil {
			return Settings{}, err
		}
		settings.VersionURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLockTimeout)); v != "" {
		d, err := parsePositiveDuration(EnvLockTimeout, v)
		if err != nil {
			return Settings{}, err
		}
		settings.LockTimeout = d
	}
	if v := strings.TrimSpace(getenv(EnvHTTPTimeout)); v != "" {
		d, err := parsePositiveDuration(EnvHTTPTimeout, v)
		if err != nil {
			return Settings{}, err
		}
		settings.HTTPTimeout = d
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		settings.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFile)); v != "" {
		settings.LogFile = v
	}
	return settings, nil
}

func parsePositiveDuration(name string, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: "+messages.ConfigInvalidDurationFmt, ErrInvalidSettings, name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: "+messages.ConfigNonPositiveDurationFmt, ErrInvalidSettings, name, raw)
	}
	return d, nil
}

func validateURL(name string, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: "+messages.ConfigInvalidURLFmt, ErrInvalidSettings, name, raw)
	}
	return nil
}

// ResolveGradleUserHome picks the Gradle user home: the command-line override,
// then GRADLE_USER_HOME, then ~/.gradle. The result is absolute.
func ResolveGradleUserHome(opts Options, getenv func(string) string) (string, error) {
	raw := opts.GradleUserHome
	if raw == "" {
		raw = strings.TrimSpace(getenv(EnvGradleUserHome))
	}
	if raw == "" {
		home, err := userHomeDir()
		if err != nil {
			return "", fmt.Errorf(messages.ConfigResolveHomeFmt, err)
		}
		return filepath.Join(home, ".gradle"), nil
	}

	expanded, err := homedir.Expand(raw)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandHomeFmt, raw, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigAbsHomeFmt, raw, err)
	}
	return abs, nil
}
