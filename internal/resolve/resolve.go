// Package resolve looks up the current Gradle release from the version endpoint.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/conn-castle/grab/internal/messages"
)

// Keys read from the version document.
const (
	KeyVersion     = "version"
	KeyDownloadURL = "downloadUrl"
)

// maxMetadataBytes bounds the version document; the real one is a few hundred bytes.
const maxMetadataBytes = 1 << 20

// Metadata describes the release to install.
type Metadata struct {
	Version     string
	DownloadURL string
}

// Resolver fetches version metadata.
type Resolver struct {
	Client    *http.Client
	UserAgent string
}

// New returns a Resolver using client.
func New(client *http.Client, userAgent string) *Resolver {
	return &Resolver{Client: client, UserAgent: userAgent}
}

// Resolve fetches url and extracts the version and download URL.
// The request is made once; callers decide what a failure means.
func (r *Resolver) Resolve(ctx context.Context, url string) (Metadata, error) {
	body, err := r.Fetch(ctx, url)
	if err != nil {
		return Metadata{}, err
	}
	return Parse(string(body), url)
}

// Parse extracts Metadata from a version document. source names the document in errors.
func Parse(doc string, source string) (Metadata, error) {
	version, err := Value(doc, KeyVersion)
	if err != nil {
		return Metadata{}, fmt.Errorf(messages.ResolveParseFmt, source, err)
	}
	if !ValidVersion(version) {
		return Metadata{}, fmt.Errorf(messages.ResolveInvalidVersionFmt, version)
	}
	downloadURL, err := Value(doc, KeyDownloadURL)
	if err != nil {
		return Metadata{}, fmt.Errorf(messages.ResolveParseFmt, source, err)
	}
	if strings.TrimSpace(downloadURL) == "" {
		return Metadata{}, fmt.Errorf(messages.ResolveEmptyDownloadURLFmt, version)
	}
	return Metadata{Version: version, DownloadURL: downloadURL}, nil
}

// ValidVersion reports whether version can name an install directory inside the cache root.
func ValidVersion(version string) bool {
	if strings.TrimSpace(version) == "" || version != strings.TrimSpace(version) {
		return false
	}
	if strings.ContainsAny(version, `/\`) || strings.Contains(version, "..") {
		return false
	}
	return !strings.ContainsAny(version, "\x00\n\r\t")
}

// Fetch GETs url and returns the body.
func (r *Resolver) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf(messages.ResolveRequestFmt, url, err)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(messages.ResolveFetchFmt, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(messages.ResolveUnexpectedStatusFmt, url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes+1))
	if err != nil {
		return nil, fmt.Errorf(messages.ResolveReadBodyFmt, url, err)
	}
	if len(body) > maxMetadataBytes {
		return nil, fmt.Errorf(messages.ResolveBodyTooLargeFmt, url, maxMetadataBytes)
	}
	return body, nil
}

// IsParseError reports whether err came from reading the version document rather than the network.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
