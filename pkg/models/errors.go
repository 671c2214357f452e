package models

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a scan failed. Every kind is terminal for the
// current scan: none are retried automatically, and all map to the failed
// phase with a user-visible message.
type FailureKind string

const (
	// FailureCapture covers permission denial, no active tab and capture
	// API errors on the privileged side of the relay.
	FailureCapture FailureKind = "capture_error"
	// FailureEmptyResponse means the remote model answered without any
	// textual payload.
	FailureEmptyResponse FailureKind = "empty_response"
	// FailureMalformedResult means the payload did not parse or did not
	// conform to the required report schema.
	FailureMalformedResult FailureKind = "malformed_result"
	// FailureRemote covers network, auth and quota failures from the
	// external service.
	FailureRemote FailureKind = "remote_error"
)

// ScanError is a classified scan failure. Message is safe to show to the
// user; Err optionally carries the underlying cause for logs.
type ScanError struct {
	Kind    FailureKind
	Message string
	Err     error
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Unwrap exposes the underlying cause for errors.Is/As chains
func (e *ScanError) Unwrap() error {
	return e.Err
}

// NewCaptureError classifies a capture-side failure
func NewCaptureError(message string) *ScanError {
	return &ScanError{Kind: FailureCapture, Message: message}
}

// NewEmptyResponseError classifies an answer with no textual payload
func NewEmptyResponseError(message string) *ScanError {
	return &ScanError{Kind: FailureEmptyResponse, Message: message}
}

// NewMalformedResultError classifies a schema violation or parse failure
func NewMalformedResultError(format string, args ...interface{}) *ScanError {
	return &ScanError{Kind: FailureMalformedResult, Message: fmt.Sprintf(format, args...)}
}

// NewRemoteError classifies a transport/auth/quota failure, keeping the
// provider's message where one is available.
func NewRemoteError(message string, cause error) *ScanError {
	return &ScanError{Kind: FailureRemote, Message: message, Err: cause}
}

// KindOf extracts the failure kind from an error chain. Unclassified errors
// report as capture failures only when forced by the caller; here they come
// back as an empty kind.
func KindOf(err error) FailureKind {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err is a scan failure of the given kind
func IsKind(err error, kind FailureKind) bool {
	return KindOf(err) == kind
}
