package messages

// System messages for the install/cache/launch pipeline.
const (
	// GrabSystemRequired indicates a nil System was supplied.
	GrabSystemRequired         = "grab system is required"
	GrabResolveWorkingDirFmt   = "resolve working directory: %w"
	GrabInterrupted            = "interrupted"
	GrabInterruptedFmt         = "%s: %w"
	GrabUpdateFailedFmt        = "Unable to update Gradle installation: %w"
	GrabLaunchFailedFmt        = "Unable to launch Gradle: %w"
	GrabInterruptedWaitingFmt  = "grab was interrupted while waiting for Gradle: %w"
	GrabOfflineNotCached       = "You must run Gradle once in online mode to download the files.\nPlease remove --offline from your script arguments."
	GrabOfflineNotCachedFmt    = "%w\n" + GrabOfflineNotCached
	GrabUserAgentFmt           = "grab/%s"
	GrabUpdatingFmt            = "Updating to Gradle %s\n"
	GrabUpdateCompleted        = "Update completed.\n"
	GrabLogStartup             = "grab starting"
	GrabLogResolved            = "resolved current version"
	GrabLogCached              = "using cached installation"
	GrabLogLaunching           = "launching gradle"
	GrabLogChildExited         = "gradle exited"
	GrabLogSettingsLoaded      = "settings loaded"
	GrabLogInstallStarted      = "install started"
	GrabLogInstallFinished     = "install finished"
	GrabLogExtracted           = "archive extracted"
	GrabLogTempCleanupFailed   = "failed to remove temporary download"
	GrabLogSignalForwarded     = "forwarded signal to gradle"
	GrabLogSignalForwardFailed = "failed to forward signal to gradle"
	GrabLogSignalFromTerminal  = "signal already delivered to gradle by the terminal"
	GrabLogOfflineResolved     = "resolved pinned version offline"

	// ResolveRequestFmt formats request construction failures.
	ResolveRequestFmt          = "create request for %s: %w"
	ResolveFetchFmt            = "fetch %s: %w"
	ResolveUnexpectedStatusFmt = "fetch %s: unexpected status %s"
	ResolveReadBodyFmt         = "read %s: %w"
	ResolveBodyTooLargeFmt     = "fetch %s: response too large (more than %d bytes)"
	ResolveKeyNotFoundFmt      = "key %s not found in JSON %s"
	ResolveTruncatedFmt        = "reached end of string while finding value of key %s in JSON %s"
	ResolveNotStringFmt        = "key %s was not a string - index %d in JSON %s"
	ResolveUnknownEscapeFmt    = "unknown escape character \\%c at index %d in JSON %s"
	ResolveParseFmt            = "parse version metadata from %s: %w"
	ResolveInvalidVersionFmt   = "invalid version %q in version metadata"
	ResolveEmptyDownloadURLFmt = "empty downloadUrl for version %s in version metadata"

	// CacheCreateRootFmt formats cache root creation failures.
	CacheCreateRootFmt     = "create cache root %s: %w"
	CacheOpenLockFmt       = "open lock %s: %w"
	CacheLockFmt           = "lock %s: %w"
	CacheLockTimeoutFmt    = "timed out waiting for lock %s after %s"
	CacheLockWaitingFmt    = "Waiting for another grab process to finish updating %s...\n"
	CacheUnlockFmt         = "unlock %s: %w"
	CacheCheckInstallFmt   = "check installation %s: %w"
	CacheCheckMarkerFmt    = "check install marker %s: %w"
	CacheCreateMarkerFmt   = "create install marker %s: %w"
	CacheRemoveMarkerFmt   = "remove install marker %s: %w"
	CacheWritePinFmt       = "write pinned version to %s: %w"
	CacheReadPinFmt        = "read pinned version %s: %v"
	CacheNotCached         = "no usable cached Gradle version"
	CacheNotCachedFmt      = "%w: %s"
	CachePinEmptyFmt       = "pin file %s is empty"
	CacheInstallMissingFmt = "installation %s does not exist"
	CacheInstallPendingFmt = "installation %s was not completed (found %s)"
	CacheInvalidVersionFmt = "invalid version %q"

	// InstallCreateTempFmt formats temp file creation failures.
	InstallCreateTempFmt       = "create temp file: %w"
	InstallCloseTempFmt        = "close temp file: %w"
	InstallDownloadingFmt      = "Downloading %s\n"
	InstallExtracting          = "Extracting files...\n"
	InstallProgressFmt         = "%s / %s (%d%%)\n"
	InstallProgressUnknownFmt  = "%s\n"
	InstallDownloadRequestFmt  = "create request for %s: %w"
	InstallDownloadFailedFmt   = "download %s: %w"
	InstallDownloadStatusFmt   = "download %s: unexpected status %s"
	InstallDownloadInterrupted = "download was interrupted"
	InstallInterrupted         = "install interrupted"
	InstallOpenArchiveFmt      = "open archive %s: %w"
	InstallReadArchiveFmt      = "read archive %s: %w"
	InstallIllegalPathFmt      = "illegal file path in archive: %s"
	InstallCreateDirFmt        = "create directory %s: %w"
	InstallCreateFileFmt       = "create file %s: %w"
	InstallWriteFileFmt        = "write file %s: %w"
	InstallOpenEntryFmt        = "open archive entry %s: %w"
	InstallMissingDistFmt      = "archive did not contain %s"
	InstallChmodFmt            = "set permissions on %s: %w"
	InstallStatScriptFmt       = "check launcher script %s: %w"
	InstallExtractInterrupted  = "extraction was interrupted"

	// LaunchEntryPointMissing reports an install without its launcher script.
	LaunchEntryPointMissing    = "gradle entry point missing"
	LaunchEntryPointMissingFmt = "%w: %s"
	LaunchCheckEntryPointFmt   = "check gradle entry point %s: %w"
	LaunchStartFmt             = "start %s: %w"
	LaunchWaitFmt              = "wait for %s: %w"
	LaunchInterrupted          = "launch was interrupted"
	LaunchStrategyRequired     = "launch strategy is required"

	// LoggingParseLevelFmt formats log level parse failures.
	LoggingParseLevelFmt = "parse log level %q: %w"
	LoggingCreateDirFmt  = "create log directory %s: %w"
	LoggingFallbackFmt   = "logger_fallback: %v\n"
)
