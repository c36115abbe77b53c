package messages

// CLI messages for the root command.
const (
	// RootUse is the CLI command name.
	RootUse = "grab [gradle arguments...]"
	// RootShort is the short description for the root command.
	RootShort = "Download, cache, and run the current Gradle release"
	RootLong  = "grab resolves the current Gradle release, installs it under <gradle user home>/grab, and runs it with the given arguments.\n\nAll arguments are passed to Gradle unchanged. grab also honors --offline and -g/--gradle-user-home."

	// FailurePrefix prefixes fatal diagnostics on stderr.
	FailurePrefix = "FAILURE: "

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
)
