package logging

import "github.com/sirupsen/logrus"

// BaseFields builds the action and run id fields every grab log line carries.
func BaseFields(action, runID string) logrus.Fields {
	return logrus.Fields{
		"action": action,
		"run_id": runID,
	}
}

// InstallFields describes one install attempt.
func InstallFields(runID, version, cacheRoot string) logrus.Fields {
	fields := BaseFields("install", runID)
	fields["version"] = version
	fields["cache_root"] = cacheRoot
	return fields
}
