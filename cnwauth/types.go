package cnwauth

// LoginResponse is the JSON envelope returned by the license endpoint for
// both login and revalidation calls.
type LoginResponse struct {
	Code string     `json:"code"`
	Data *LoginData `json:"data"`
	Msg  string     `json:"msg"`
}

// LoginData carries the payload of a successful response.
type LoginData struct {
	Name string `json:"name"`
}

// Success reports whether the envelope represents an accepted credential:
// the code must be empty, "0" or "200", and a data payload must be present.
func (r *LoginResponse) Success() bool {
	if r == nil {
		return false
	}
	return (r.Code == "" || r.Code == "0" || r.Code == "200") && r.Data != nil
}

// Name returns the display name carried by the response, or "" when absent.
func (r *LoginResponse) Name() string {
	if r == nil || r.Data == nil {
		return ""
	}
	return r.Data.Name
}

// Outcome classifies the result of a validation call against the server.
type Outcome int

const (
	// OutcomeValid means the server explicitly accepted the credential.
	OutcomeValid Outcome = iota

	// OutcomeInvalid means the server explicitly rejected the credential.
	// This is the only outcome that triggers session teardown.
	OutcomeInvalid

	// OutcomeIndeterminate means no trustworthy answer was obtained
	// (transport failure, malformed response, or a server-side error).
	// Background revalidation treats it as still-valid.
	OutcomeIndeterminate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// LoginResult is returned by OnlineClient.Login and Manager.Login.
type LoginResult struct {
	Outcome     Outcome
	DisplayName string
	// Message is always usable for display: it is the server-provided
	// message, or a fixed fallback when the server supplied none.
	Message string
	// Err carries the underlying classification (ErrTransport, ErrProtocol
	// or ErrAuthRejected) when Outcome is not OutcomeValid.
	Err error
}
