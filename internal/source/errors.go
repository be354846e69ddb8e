package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ParamError rejects a request before the upstream is contacted; the
// boundary maps it to 400. Quota is still consumed by then, on purpose.
type ParamError struct {
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

func NewParamError(format string, args ...any) *ParamError {
	return &ParamError{Message: fmt.Sprintf(format, args...)}
}

var (
	errSourceRateLimited = errors.New("rate limited by upstream source")
	errSourceRejected    = errors.New("upstream source rejected the request")
	errSourceMalformed   = errors.New("upstream source returned a malformed response")
)

// FailureMessage classifies a post-authorization upstream failure into the
// message surfaced on a 502. The already-committed usage increment is never
// rolled back for any of these.
func FailureMessage(err error) string {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "upstream request timed out"
	case errors.Is(err, errSourceRateLimited):
		return "upstream source is rate limiting requests, try again later"
	case errors.Is(err, errSourceRejected):
		return fmt.Sprintf("upstream request failed: %v", err)
	case errors.Is(err, errSourceMalformed):
		return "upstream source returned an unreadable response"
	case errors.As(err, &dnsErr):
		return fmt.Sprintf("upstream host could not be resolved: %s", dnsErr.Name)
	case errors.Is(err, syscall.ECONNREFUSED):
		return "upstream connection refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "upstream connection reset"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "upstream request timed out"
	}
	return fmt.Sprintf("upstream request failed: %v", err)
}
