package routeros

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// TransportError wraps a failed router request. The poll loop treats it as
// transient and keeps scheduling; it never propagates past the monitor.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "router transport error"
	}
	return fmt.Sprintf("router request failed for %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// APIError is a non-2xx response from the router REST API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e == nil {
		return "router api error"
	}
	return fmt.Sprintf("router api status %d: %s", e.Status, e.Body)
}

// IsTransport reports whether err counts as a transient transport failure
// for the consecutive-failure policy.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	return errors.As(err, &te)
}

// IsUnauthorized reports a 401/403 from the router, which is a credential
// problem rather than a transient fault.
func IsUnauthorized(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status == 401 || ae.Status == 403
	}
	return false
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ae *APIError
	if errors.As(err, &ae) {
		// 4xx will not heal on retry.
		return ae.Status >= 500
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"broken pipe",
		"connection reset",
		"connection refused",
		"use of closed network connection",
		"timeout",
		"eof",
	} {
		if strings.Contains(message, fragment) {
			return true
		}
	}
	return false
}
