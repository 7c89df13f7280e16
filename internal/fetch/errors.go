// Copyright Ansvar Systems AB, 2026. All rights reserved.

package fetch

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransientError marks a failure worth retrying: HTTP 429/5xx or a
// transport-level error that is not a trust failure. The retry loop
// escalates it after the attempt budget is spent.
type TransientError struct {
	// Status is the HTTP status code, or zero for transport errors.
	Status int

	// Err is the underlying cause, nil for pure status failures.
	Err error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient fetch error: %v", e.Err)
	}
	return fmt.Sprintf("transient fetch error: HTTP %d", e.Status)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ChallengeError reports that a response matched the anti-automation
// challenge fingerprint on the named transport.
type ChallengeError struct {
	// Transport is "primary" or "alternate".
	Transport string

	// URL is the requested endpoint.
	URL string
}

func (e *ChallengeError) Error() string {
	return fmt.Sprintf("challenge page served on %s transport for %s", e.Transport, e.URL)
}

// TerminalChallengeError reports that both transports failed, carrying
// both failure reasons for the skip report.
type TerminalChallengeError struct {
	Primary   error
	Alternate error
}

func (e *TerminalChallengeError) Error() string {
	return fmt.Sprintf("both transports failed: primary: %v; alternate: %v", e.Primary, e.Alternate)
}

// ErrRobotsDisallowed is returned when robots.txt forbids the requested path.
var ErrRobotsDisallowed = errors.New("path disallowed by robots.txt")

// isTransientStatus reports whether an HTTP status warrants a retry.
func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// isTLSTrustError reports whether err is a certificate trust failure.
// Trust failures are never retried on the primary transport; they
// escalate straight to the certificate-lenient alternate.
func isTLSTrustError(err error) bool {
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return true
	}
	var invalid x509.CertificateInvalidError
	return errors.As(err, &invalid)
}

// isTransientTransport reports whether a transport error is worth retrying
// on the same transport: timeouts and temporary network conditions.
func isTransientTransport(err error) bool {
	if isTLSTrustError(err) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// Connection resets and refusals surface as *net.OpError.
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
