package install

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/grab/internal/messages"
)

// extract unpacks archivePath into destDir. Entries that would land outside
// destDir fail the whole extraction.
func extract(ctx context.Context, format archiveFormat, archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf(messages.InstallCreateDirFmt, destDir, err)
	}
	if format == formatTarGz {
		return extractTarGz(ctx, archivePath, destDir)
	}
	return extractZip(ctx, archivePath, destDir)
}

func extractZip(ctx context.Context, archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf(messages.InstallOpenArchiveFmt, archivePath, err)
	}
	defer func() { _ = reader.Close() }()

	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return interrupted(messages.InstallExtractInterrupted, err)
		}
		target, err := entryPath(destDir, entry.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}
		info := entry.FileInfo()
		switch {
		case info.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf(messages.InstallCreateDirFmt, target, err)
			}
		case info.Mode().IsRegular():
			src, err := entry.Open()
			if err != nil {
				return fmt.Errorf(messages.InstallOpenEntryFmt, entry.Name, err)
			}
			err = writeFile(ctx, target, src, info.Mode().Perm())
			_ = src.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func extractTarGz(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf(messages.InstallOpenArchiveFmt, archivePath, err)
	}
	defer func() { _ = file.Close() }()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf(messages.InstallOpenArchiveFmt, archivePath, err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return interrupted(messages.InstallExtractInterrupted, err)
		}
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf(messages.InstallReadArchiveFmt, archivePath, err)
		}
		target, err := entryPath(destDir, header.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf(messages.InstallCreateDirFmt, target, err)
			}
		case tar.TypeReg:
			if err := writeFile(ctx, target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		}
	}
}

// entryPath resolves an archive entry name inside destDir. It returns "" for
// entries naming destDir itself.
func entryPath(destDir, name string) (string, error) {
	root := filepath.Clean(destDir)
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf(messages.InstallIllegalPathFmt, name)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	if target == root {
		return "", nil
	}
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf(messages.InstallIllegalPathFmt, name)
	}
	return target, nil
}

func writeFile(ctx context.Context, target string, src io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf(messages.InstallCreateDirFmt, filepath.Dir(target), err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf(messages.InstallCreateFileFmt, target, err)
	}
	if _, err := copyWithContext(ctx, out, src); err != nil {
		_ = out.Close()
		if ctx.Err() != nil {
			return interrupted(messages.InstallExtractInterrupted, ctx.Err())
		}
		return fmt.Errorf(messages.InstallWriteFileFmt, target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf(messages.InstallWriteFileFmt, target, err)
	}
	return nil
}
