package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID is an http.RoundTripper that stamps each request with a fresh UUID
// unless the caller already set one.
type RequestID struct {
	next http.RoundTripper
}

// NewRequestID wraps next. A nil next uses http.DefaultTransport.
func NewRequestID(next http.RoundTripper) *RequestID {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RequestID{next: next}
}

func (m *RequestID) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return m.next.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return m.next.RoundTrip(r)
}
