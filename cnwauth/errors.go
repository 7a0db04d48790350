package cnwauth

import "errors"

// Sentinel errors for license validation failures.
var (
	// ErrTransport marks a call where no response was obtained at all:
	// connection failure, timeout, or a non-2xx status without a parseable
	// envelope.
	ErrTransport = errors.New("transport failure")

	// ErrProtocol marks a response that was received but could not be
	// decoded as a license envelope.
	ErrProtocol = errors.New("malformed server response")

	// ErrAuthRejected marks an explicit rejection of the credential by the
	// server.
	ErrAuthRejected = errors.New("credential rejected")

	// ErrEmptyCredential is returned by Manager.Login for empty input,
	// before any network call is made.
	ErrEmptyCredential = errors.New("credential is empty")
)

// Fixed user-facing messages. Callers surface these verbatim when the server
// did not supply a usable message of its own.
const (
	MsgNetworkFailure  = "network request failed, please check your connection"
	MsgServerMalformed = "server response malformed"
	MsgBadCredential   = "license key is incorrect"
	MsgAuthExpired     = "authorization expired, please log in again"
)
