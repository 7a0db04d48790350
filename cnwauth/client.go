package cnwauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20 // 1 MB
)

// authErrorCodes are envelope codes that always mean the credential was
// rejected, regardless of any message text.
var authErrorCodes = map[string]struct{}{
	"400": {},
	"401": {},
	"403": {},
}

// networkIndicators is the vocabulary used to recognize server messages that
// describe a network or server-side problem rather than a rejected
// credential. Matching is case-insensitive substring matching.
//
// This is a heuristic inherited from the endpoint's message conventions: a
// server-side wording change can flip classification, which is why the list
// lives here in one place and is covered by tests.
var networkIndicators = []string{
	"network",
	"connection",
	"server",
	"timeout",
	"unreachable",
}

// OnlineClient is the stateless protocol client for the license endpoint.
// Validation is a single GET of <endpoint>/<url-escaped credential> returning
// a LoginResponse envelope.
type OnlineClient struct {
	endpoint    string
	httpClient  *http.Client
	timeout     time.Duration // applied after all options
	userAgent   string
	fingerprint string
	log         zerolog.Logger
}

// NewOnlineClient creates a client for the license endpoint. endpoint is the
// URL prefix the credential is appended to, e.g.
// "https://license.example.com/v1/vpn".
func NewOnlineClient(endpoint string, opts ...ClientOption) *OnlineClient {
	c := &OnlineClient{
		endpoint:  strings.TrimRight(endpoint, "/"),
		timeout:   defaultTimeout,
		userAgent: "cnw-device-auth-go/1.0",
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// If no custom HTTP client was provided, create one.
	// Apply timeout after all options so ordering doesn't matter.
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.httpClient.Timeout = c.timeout
	return c
}

// Fingerprint returns the fingerprint configured via WithFingerprint.
// Returns an empty string if no fingerprint was set.
func (c *OnlineClient) Fingerprint() string {
	return c.fingerprint
}

// Validate re-checks a credential on behalf of the background scheduler.
//
// Classification is fail-open: only an explicit rejection produces
// OutcomeInvalid. Transport failures, malformed bodies and
// network-indicative server messages all produce OutcomeIndeterminate,
// because retrying on the next interval is always safe while revoking a
// legitimate session on a flaky network is not.
//
// The returned response is nil when no envelope was obtained.
func (c *OnlineClient) Validate(ctx context.Context, credential string) (Outcome, *LoginResponse) {
	resp, err := c.fetch(ctx, credential)
	if err != nil {
		c.log.Info().Err(err).Msg("revalidation inconclusive, assuming valid")
		return OutcomeIndeterminate, nil
	}

	if _, rejected := authErrorCodes[resp.Code]; rejected {
		c.log.Warn().Str("code", resp.Code).Msg("credential rejected by server")
		return OutcomeInvalid, resp
	}

	if !resp.Success() {
		if hasNetworkIndicator(resp.Msg) {
			c.log.Info().Str("msg", resp.Msg).Msg("server reports network trouble, assuming valid")
			return OutcomeIndeterminate, resp
		}
		c.log.Warn().Str("code", resp.Code).Str("msg", resp.Msg).Msg("credential no longer accepted")
		return OutcomeInvalid, resp
	}

	return OutcomeValid, resp
}

// Login checks a credential the user just entered.
//
// Unlike Validate, login fails closed: a user actively entering a key should
// see a clear answer, so ambiguity is reported as failure with a fixed
// message instead of being waved through. The Message field of the result is
// always usable for display.
func (c *OnlineClient) Login(ctx context.Context, credential string) *LoginResult {
	resp, err := c.fetch(ctx, credential)
	if err != nil {
		msg := MsgNetworkFailure
		if errors.Is(err, ErrProtocol) {
			msg = MsgServerMalformed
		}
		c.log.Warn().Err(err).Msg("login call failed")
		return &LoginResult{Outcome: OutcomeIndeterminate, Message: msg, Err: err}
	}

	if resp.Success() {
		return &LoginResult{Outcome: OutcomeValid, DisplayName: resp.Name(), Message: resp.Msg}
	}

	msg := resp.Msg
	if msg == "" || hasNetworkIndicator(msg) {
		msg = MsgBadCredential
	}
	c.log.Warn().Str("code", resp.Code).Str("msg", resp.Msg).Msg("login rejected")
	return &LoginResult{
		Outcome: OutcomeInvalid,
		Message: msg,
		Err:     fmt.Errorf("%w: code %q", ErrAuthRejected, resp.Code),
	}
}

// fetch performs the GET and decodes the envelope. Errors wrap ErrTransport
// when no envelope was obtained and ErrProtocol when the body was
// undecodable.
func (c *OnlineClient) fetch(ctx context.Context, credential string) (*LoginResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+url.PathEscape(credential), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.fingerprint != "" {
		req.Header.Set("X-Device-Fingerprint", c.fingerprint)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	var envelope LoginResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Some deployments report hard failures at the HTTP layer with
		// non-JSON bodies. Without an envelope that is a transport
		// failure, not a verdict.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return &envelope, nil
}

func hasNetworkIndicator(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	for _, word := range networkIndicators {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
