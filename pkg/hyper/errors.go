package hyper

import "fmt"

// The error taxonomy splits failures by retry safety. Construction and
// venue rejections are never retried; rate limiting and network faults
// are retried internally a bounded number of times before surfacing.
// Nothing is ever retried once the venue may have accepted the request.

// ConstructionError marks a fatal local failure building or signing an
// action: a bad key, an unresolvable symbol, an unencodable payload.
type ConstructionError struct {
	Op  string
	Err error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// RateLimitError surfaces after HTTP 429 has exhausted its backoff
// budget. StatusCode preserves the final response status.
type RateLimitError struct {
	StatusCode int
	Attempts   int
	Body       string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts (status %d): %s", e.Attempts, e.StatusCode, e.Body)
}

// TransportError surfaces after network-level failures (reset, timeout,
// cancellation) have exhausted their bounded retries.
type TransportError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// VenueError is a request the venue rejected: an HTTP >=400 response
// (other than 429) with the body verbatim, or a 2xx response whose
// embedded status reports an error. Never retried, since resubmitting a
// rejected order risks a duplicate if the rejection was partial.
type VenueError struct {
	StatusCode int
	Body       string
}

func (e *VenueError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("venue rejected request (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("venue rejected request: %s", e.Body)
}
