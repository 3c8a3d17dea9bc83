package groq

import (
	"fmt"
	"net/http"
)

// FailureKind classifies why a completion call produced no answer.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureUnauthorized
	FailureRateLimited
	FailureServerError
	FailureNetworkError
	FailureTimedOut
	FailureMalformed
)

func (k FailureKind) String() string {
	switch k {
	case FailureUnauthorized:
		return "unauthorized"
	case FailureRateLimited:
		return "rate limited"
	case FailureServerError:
		return "server error"
	case FailureNetworkError:
		return "network error"
	case FailureTimedOut:
		return "timed out"
	case FailureMalformed:
		return "malformed response"
	default:
		return "unknown"
	}
}

// Failure is the typed error returned by Client.Complete. Detail keeps the
// raw status and body text for diagnostics.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("completion failed (%s): %s", f.Kind, f.Detail)
}

func classifyStatus(statusCode int) FailureKind {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return FailureUnauthorized
	case statusCode == http.StatusTooManyRequests:
		return FailureRateLimited
	case statusCode >= http.StatusInternalServerError:
		return FailureServerError
	default:
		return FailureMalformed
	}
}
