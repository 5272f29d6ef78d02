package transcribe

import "fmt"

// ErrorKind classifies transcription failures. Callers use the taxonomy to
// decide user-facing messaging; none of these are retried.
type ErrorKind string

const (
	// KindInvalidCredentials means the API key was empty or rejected before
	// any network call was made.
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	// KindNetwork is a transport-level failure (DNS, connect, timeout).
	KindNetwork ErrorKind = "network"
	// KindHTTP is a non-2xx status without a parsable provider error payload.
	KindHTTP ErrorKind = "http"
	// KindAPI is a provider-reported error payload.
	KindAPI ErrorKind = "api"
	// KindInvalidResponse is a response body that could not be parsed.
	KindInvalidResponse ErrorKind = "invalid_response"
	// KindEmptyResult is a well-formed response carrying no text.
	KindEmptyResult ErrorKind = "empty_result"
)

// Error is a classified transcription failure.
type Error struct {
	Kind    ErrorKind
	Status  int // HTTP status code, when applicable
	Message string
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("transcription %s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("transcription %s: %s", e.Kind, e.Message)
	case e.cause != nil:
		return fmt.Sprintf("transcription %s: %v", e.Kind, e.cause)
	default:
		return fmt.Sprintf("transcription %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, cause: err}
}
