package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// DistributionServer serves a version metadata document and one distribution archive.
type DistributionServer struct {
	*httptest.Server
	Version string
	Archive []byte
	// ArchivePath is the request path the archive is served from.
	ArchivePath string

	metadataHits atomic.Int32
	archiveHits  atomic.Int32
	chunks       atomic.Int32
	chunkDelay   atomic.Int64
}

// NewDistributionServer starts a server for version backed by archive. The
// archive is served as a zip unless archivePath ends in .tar.gz or .tgz.
func NewDistributionServer(t *testing.T, version string, archivePath string, archive []byte) *DistributionServer {
	t.Helper()
	ds := &DistributionServer{Version: version, Archive: archive, ArchivePath: archivePath}
	mux := http.NewServeMux()
	mux.HandleFunc("/versions/current", func(w http.ResponseWriter, _ *http.Request) {
		ds.metadataHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"version" : "%s", "buildTime" : "20220117064707+0000", "downloadUrl" : "%s"}`, version, ds.URL+archivePath)
	})
	mux.HandleFunc(archivePath, func(w http.ResponseWriter, _ *http.Request) {
		ds.archiveHits.Add(1)
		w.Header().Set("Content-Length", fmt.Sprint(len(archive)))
		ds.writeArchive(w)
	})
	ds.Server = httptest.NewServer(mux)
	t.Cleanup(ds.Close)
	return ds
}

// Throttle makes later archive downloads arrive in chunks pieces, flushed
// delay apart.
func (ds *DistributionServer) Throttle(chunks int, delay time.Duration) {
	ds.chunks.Store(int32(chunks))
	ds.chunkDelay.Store(int64(delay))
}

func (ds *DistributionServer) writeArchive(w http.ResponseWriter) {
	chunks := int(ds.chunks.Load())
	if chunks <= 1 {
		_, _ = w.Write(ds.Archive)
		return
	}
	delay := time.Duration(ds.chunkDelay.Load())
	flusher, _ := w.(http.Flusher)
	size := (len(ds.Archive) + chunks - 1) / chunks
	for start := 0; start < len(ds.Archive); start += size {
		end := min(start+size, len(ds.Archive))
		if _, err := w.Write(ds.Archive[start:end]); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if end < len(ds.Archive) {
			time.Sleep(delay)
		}
	}
}

// MetadataURL returns the URL of the version metadata document.
func (ds *DistributionServer) MetadataURL() string {
	return ds.URL + "/versions/current"
}

// MetadataHits returns how many metadata requests were served.
func (ds *DistributionServer) MetadataHits() int {
	return int(ds.metadataHits.Load())
}

// ArchiveHits returns how many archive downloads were served.
func (ds *DistributionServer) ArchiveHits() int {
	return int(ds.archiveHits.Load())
}
