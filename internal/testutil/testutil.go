package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// GradleScript is the launcher script path inside a distribution directory.
const GradleScript = "bin/gradle"

// WriteGradleStub writes an executable bin/gradle shell script under installDir.
// t is the active test; body is the script text after the shebang line.
func WriteGradleStub(t *testing.T, installDir string, body string) string {
	t.Helper()
	path := filepath.Join(installDir, filepath.FromSlash(GradleScript))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// WriteGradleStubWithExit writes a bin/gradle stub that exits with exitCode.
func WriteGradleStubWithExit(t *testing.T, installDir string, exitCode int) string {
	t.Helper()
	return WriteGradleStub(t, installDir, fmt.Sprintf("exit %d", exitCode))
}

// DistributionFiles returns the entries of a minimal gradle-<version>
// distribution whose bin/gradle prints its arguments.
func DistributionFiles(version string) map[string]string {
	root := "gradle-" + version + "/"
	return map[string]string{
		root + GradleScript:        "#!/bin/sh\necho gradle " + version + " \"$@\"\n",
		root + "bin/gradle.bat":    "@echo gradle " + version + " %*\r\n",
		root + "lib/placeholder":   "lib",
		root + "LICENSE":           "license",
		root + "init.d/readme.txt": "init",
	}
}

// ZipArchive builds an in-memory zip. Directory entries are added for every
// parent, and files are stored owner-readable but not executable.
func ZipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, dir := range parentDirs(files) {
		header := &zip.FileHeader{Name: dir, Method: zip.Store}
		header.SetMode(os.ModeDir | 0o755)
		if _, err := zw.CreateHeader(header); err != nil {
			t.Fatalf("zip dir %s: %v", dir, err)
		}
	}
	for _, name := range sortedKeys(files) {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		header.SetMode(0o644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("zip file %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// TarGzArchive builds an in-memory .tar.gz with the same layout as ZipArchive.
func TarGzArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, dir := range parentDirs(files) {
		if err := tw.WriteHeader(&tar.Header{Name: dir, Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
			t.Fatalf("tar dir %s: %v", dir, err)
		}
	}
	for _, name := range sortedKeys(files) {
		body := []byte(files[name])
		if err := tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}); err != nil {
			t.Fatalf("tar header %s: %v", name, err)
		}
		if _, err := tw.Write(body); err != nil {
			t.Fatalf("tar write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// WithWorkingDir runs fn with dir as the current working directory and restores the previous directory.
// t is the active test; dir is the temporary working directory for fn.
func WithWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() {
		if err := os.Chdir(cwd); err != nil {
			t.Fatalf("restore chdir: %v", err)
		}
	}()
	fn()
}

func sortedKeys(files map[string]string) []string {
	keys := make([]string, 0, len(files))
	for name := range files {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

func parentDirs(files map[string]string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, name := range sortedKeys(files) {
		for dir := filepath.ToSlash(filepath.Dir(name)); dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(dir)) {
			if seen[dir] {
				continue
			}
			seen[dir] = true
			dirs = append(dirs, dir+"/")
		}
	}
	sort.Strings(dirs)
	return dirs
}
