package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

// StatusError is a non-2xx reply from an HTTP backend.
type StatusError struct {
	Backend    string
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s status: %s", e.Backend, e.Operation, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ClassifyHTTP retries network failures, client timeouts and transient
// status codes. The caller's own cancellation or deadline never retries and
// never trips a breaker; callers surface it as a bare context error.
func ClassifyHTTP(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{}
	case errors.Is(err, context.Canceled):
		return Outcome{}
	case isTransportTimeout(err):
		return Outcome{Retry: true, Trip: true}
	case errors.Is(err, context.DeadlineExceeded):
		return Outcome{}
	case IsCircuitOpen(err):
		return Outcome{Retry: true, Trip: true}
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		retry := retryableStatus(statusErr.StatusCode)
		return Outcome{Retry: retry, Trip: retry}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Outcome{Retry: true, Trip: true}
	}
	return Outcome{Trip: true}
}

// isTransportTimeout reports an http.Client timeout. Those errors also match
// context.DeadlineExceeded, so they are told apart by the *url.Error.
func isTransportTimeout(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// Temporary marks err as domain.ErrTemporary when classify says it is
// transient or the breaker rejected the call.
func Temporary(operation string, err error, classify Classifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if IsCircuitOpen(err) || classify(err).Retry {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
