//go:build windows

package install

// fixPermissions is a no-op; gradle.bat needs no execute bit.
func fixPermissions(string) error {
	return nil
}
