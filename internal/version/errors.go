package version

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrorType classifies resolver errors for better handling.
type ErrorType int

const (
	// ErrTypeNetwork indicates a generic network-related error
	// (fallback when the specific type is unknown).
	ErrTypeNetwork ErrorType = iota
	// ErrTypeNotFound indicates the requested release or tag was not found.
	ErrTypeNotFound
	// ErrTypeParsing indicates the release metadata could not be parsed
	// (for example a release object with no tag_name).
	ErrTypeParsing
	// ErrTypeRateLimit indicates the release host's API rate limit was hit.
	ErrTypeRateLimit
	// ErrTypeTimeout indicates a request timeout.
	ErrTypeTimeout
	// ErrTypeDNS indicates DNS resolution failure.
	ErrTypeDNS
	// ErrTypeTLS indicates TLS certificate errors.
	ErrTypeTLS
)

// ResolverError provides structured error information for tag resolution
// failures.
type ResolverError struct {
	Type    ErrorType
	Repo    string // "owner/repo" slug the resolution targeted
	Message string // Human-readable error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *ResolverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s: %s: %v", e.Repo, e.Message, e.Err)
	}
	return fmt.Sprintf("resolve %s: %s", e.Repo, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ResolverError) Unwrap() error {
	return e.Err
}

// Suggestion returns an actionable suggestion for the user based on the
// error type. Returns an empty string if no specific suggestion is
// available.
func (e *ResolverError) Suggestion() string {
	switch e.Type {
	case ErrTypeRateLimit:
		return "Wait a few minutes before trying again, or set GITHUB_TOKEN for a higher rate limit"
	case ErrTypeTimeout:
		return "Check your internet connection and try again"
	case ErrTypeDNS:
		return "Check your DNS settings and internet connection"
	case ErrTypeTLS:
		return "There may be a certificate issue. Check your system time is correct"
	case ErrTypeNotFound:
		return "Verify the requested tag exists on the releases page"
	case ErrTypeNetwork:
		return "Check your internet connection and try again"
	default:
		return ""
	}
}

// RateLimitError reports an exhausted API rate limit with enough detail
// for the user to decide whether to wait or authenticate.
type RateLimitError struct {
	Limit         int
	Remaining     int
	ResetTime     time.Time
	Authenticated bool
	Err           error
}

func (e *RateLimitError) Error() string {
	wait := time.Until(e.ResetTime).Round(time.Second)
	if e.Authenticated {
		return fmt.Sprintf("GitHub API rate limit exceeded (%d/%d), resets in %s", e.Remaining, e.Limit, wait)
	}
	return fmt.Sprintf("GitHub API rate limit exceeded (%d/%d), resets in %s; set GITHUB_TOKEN to raise the limit", e.Remaining, e.Limit, wait)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// ClassifyError examines an error and returns the most specific ErrorType.
// This function uses Go's error unwrapping to detect specific network
// error types.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrTypeNetwork
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ErrTypeTimeout
		}
		return ErrTypeDNS
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return ErrTypeTLS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return ErrTypeTimeout
		}
		return ErrTypeNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTypeTimeout
	}

	return ErrTypeNetwork
}
