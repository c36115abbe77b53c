package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/conn-castle/grab/internal/messages"
)

var osCreateTemp = os.CreateTemp

// Download streams rawURL into a new temp file and returns its path. The
// caller owns the file. On failure nothing is left behind.
func (i *Installer) Download(ctx context.Context, rawURL, version string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", stageErr(StageDownload, fmt.Errorf(messages.InstallDownloadRequestFmt, rawURL, err))
	}
	if i.UserAgent != "" {
		req.Header.Set("User-Agent", i.UserAgent)
	}
	_, _ = fmt.Fprintf(i.out(), messages.InstallDownloadingFmt, rawURL)
	resp, err := i.client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", interrupted(messages.InstallDownloadInterrupted, ctx.Err())
		}
		return "", stageErr(StageDownload, fmt.Errorf(messages.InstallDownloadFailedFmt, rawURL, err))
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", stageErr(StageDownload, fmt.Errorf(messages.InstallDownloadStatusFmt, rawURL, resp.Status))
	}

	file, err := osCreateTemp(i.TempDir, "gradle-"+version+"-download-*"+archiveExt(rawURL))
	if err != nil {
		return "", stageErr(StageDownload, fmt.Errorf(messages.InstallCreateTempFmt, err))
	}
	path := file.Name()
	cleanup := func() {
		_ = file.Close()
		_ = os.Remove(path)
	}

	progress := newProgressWriter(i.out(), resp.ContentLength, i.clock())
	if _, err := copyWithContext(ctx, io.MultiWriter(file, progress), resp.Body); err != nil {
		cleanup()
		if ctx.Err() != nil {
			return "", interrupted(messages.InstallDownloadInterrupted, ctx.Err())
		}
		return "", stageErr(StageDownload, fmt.Errorf(messages.InstallDownloadFailedFmt, rawURL, err))
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", stageErr(StageDownload, fmt.Errorf(messages.InstallCloseTempFmt, err))
	}
	return path, nil
}

// copyWithContext copies src to dst, checking ctx before every chunk.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}

type archiveFormat int

const (
	formatZip archiveFormat = iota
	formatTarGz
)

// formatFor picks the archive format from the download URL path.
func formatFor(rawURL string) archiveFormat {
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	path = strings.ToLower(path)
	if strings.HasSuffix(path, ".tar.gz") || strings.HasSuffix(path, ".tgz") {
		return formatTarGz
	}
	return formatZip
}

func archiveExt(rawURL string) string {
	if formatFor(rawURL) == formatTarGz {
		return ".tar.gz"
	}
	return ".zip"
}
