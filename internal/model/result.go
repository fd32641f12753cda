package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorKind classifies why a poll attempt failed.
type ErrorKind int

const (
	// KindHTTPStatus means the server answered with a non-2xx status.
	KindHTTPStatus ErrorKind = iota + 1
	// KindNoResponse means the request was sent but no response arrived.
	KindNoResponse
	// KindRequestSetup means the request could not be built locally.
	KindRequestSetup
	// KindMalformedPayload means a 2xx body failed shape validation.
	KindMalformedPayload
)

func (k ErrorKind) String() string {
	switch k {
	case KindHTTPStatus:
		return "http_status"
	case KindNoResponse:
		return "no_response"
	case KindRequestSetup:
		return "request_setup"
	case KindMalformedPayload:
		return "malformed_payload"
	default:
		return "unknown"
	}
}

// NetworkErrorMessage is shown when the backend could not be reached.
const NetworkErrorMessage = "Network Error: No response from backend. Is the backend running?"

// Failure is a classified poll failure.
type Failure struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"statusCode,omitempty"` // KindHTTPStatus only
	Detail     string    `json:"detail,omitempty"`     // Server detail, fault text or validation reason
	Message    string    `json:"message"`              // User-facing text
}

// HTTPStatusFailure builds a failure for a non-2xx response. The detail from the
// body wins over the status text.
func HTTPStatusFailure(code int, detail, statusText string) Failure {
	text := detail
	if text == "" {
		text = statusText
	}
	return Failure{
		Kind:       KindHTTPStatus,
		StatusCode: code,
		Detail:     text,
		Message:    fmt.Sprintf("Error: %d - %s", code, text),
	}
}

// NoResponseFailure builds the fixed network failure.
func NoResponseFailure() Failure {
	return Failure{Kind: KindNoResponse, Message: NetworkErrorMessage}
}

// RequestSetupFailure builds a failure for a local fault before dispatch.
func RequestSetupFailure(fault string) Failure {
	return Failure{
		Kind:    KindRequestSetup,
		Detail:  fault,
		Message: "An unexpected error occurred: " + fault,
	}
}

// MalformedPayloadFailure builds a failure for a 2xx body with the wrong shape.
func MalformedPayloadFailure(reason string) Failure {
	return Failure{
		Kind:    KindMalformedPayload,
		Detail:  reason,
		Message: "Malformed response: " + reason,
	}
}

func (f Failure) Error() string { return f.Message }

// FetchResult is the outcome of exactly one poll attempt: either quotes or a failure.
type FetchResult struct {
	AttemptID   uuid.UUID
	Quotes      []Quote
	Failure     *Failure
	CompletedAt time.Time
}

// Succeeded returns a successful result. A nil quote list is normalized to empty.
func Succeeded(attemptID uuid.UUID, quotes []Quote, at time.Time) FetchResult {
	if quotes == nil {
		quotes = []Quote{}
	}
	return FetchResult{AttemptID: attemptID, Quotes: quotes, CompletedAt: at}
}

// Failed returns a failed result.
func Failed(attemptID uuid.UUID, f Failure, at time.Time) FetchResult {
	return FetchResult{AttemptID: attemptID, Failure: &f, CompletedAt: at}
}

// OK reports whether the attempt succeeded.
func (r FetchResult) OK() bool { return r.Failure == nil }
