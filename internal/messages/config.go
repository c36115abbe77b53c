package messages

// Config messages for settings and command-line options.
const (
	// ConfigInvalidGradleHome indicates -g was given without a path.
	ConfigInvalidGradleHome      = "Invalid Gradle home specified."
	ConfigResolveHomeFmt         = "resolve user home directory: %w"
	ConfigExpandHomeFmt          = "expand gradle user home %s: %w"
	ConfigAbsHomeFmt             = "resolve gradle user home %s: %w"
	ConfigReadSettingsFmt        = "read settings %s: %w"
	ConfigInvalidSettingsFmt     = "invalid settings %s: %w"
	ConfigInvalidDurationFmt     = "invalid %s %q: %w"
	ConfigNonPositiveDurationFmt = "invalid %s %q: must be positive"
	ConfigInvalidURLFmt          = "invalid %s %q: must be an absolute http or https URL"
)
