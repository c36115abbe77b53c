package launch

import "path/filepath"

// EntryPoint is the program that starts a Gradle distribution.
type EntryPoint struct {
	// Script is the launcher script inside the distribution.
	Script string
	// Path is the program to execute.
	Path string
	// Args precede the user's arguments.
	Args []string
}

// EntryPointFor returns the entry point of installDir for goos.
// Windows runs bin\gradle.bat through cmd /c; everything else runs bin/gradle.
func EntryPointFor(installDir, goos string) EntryPoint {
	dir, err := filepath.Abs(installDir)
	if err != nil {
		dir = installDir
	}
	if goos == "windows" {
		script := filepath.Join(dir, "bin", "gradle.bat")
		return EntryPoint{Script: script, Path: "cmd", Args: []string{"/c", script}}
	}
	script := filepath.Join(dir, "bin", "gradle")
	return EntryPoint{Script: script, Path: script}
}
