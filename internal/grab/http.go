package grab

import (
	"net"
	"net/http"
	"time"
)

// newMetadataClient bounds the whole version lookup by timeout.
func newMetadataClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(timeout),
	}
}

// newDownloadClient bounds connecting and waiting for response headers but
// not the body, so a slow archive download that keeps delivering bytes runs
// until the context is cancelled.
func newDownloadClient(timeout time.Duration) *http.Client {
	return &http.Client{Transport: newTransport(timeout)}
}

func newTransport(timeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}
