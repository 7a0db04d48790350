package cnwauth

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ClientOption configures an OnlineClient.
type ClientOption func(*OnlineClient)

// WithHTTPClient sets a custom HTTP client for the OnlineClient.
// The client's Timeout will be overridden by WithTimeout (or the default 10s).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *OnlineClient) {
		o.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout. Default is 10 seconds. A timeout
// is classified as a transport failure, never as a rejected credential.
// Option ordering does not matter: timeout is always applied after all options.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *OnlineClient) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) ClientOption {
	return func(o *OnlineClient) {
		o.userAgent = ua
	}
}

// WithFingerprint sets the device fingerprint sent as the
// X-Device-Fingerprint header so the server can bind the credential to this
// machine.
func WithFingerprint(fp string) ClientOption {
	return func(o *OnlineClient) {
		o.fingerprint = fp
	}
}

// WithClientLogger sets the logger used for call diagnostics.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(o *OnlineClient) {
		o.log = log
	}
}
