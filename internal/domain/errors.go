// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases.
var (
	// ErrNoSymptoms indicates the symptom list is missing or empty.
	ErrNoSymptoms = errors.New("no symptoms provided")

	// ErrNoFile indicates a multipart request carried no file.
	ErrNoFile = errors.New("no file uploaded")

	// ErrInvalidFileType indicates the declared media type is not allow-listed.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrModelTimeout indicates the model server did not answer before the deadline.
	ErrModelTimeout = errors.New("model server timeout")

	// ErrModelUnavailable indicates the model server refused or failed the call.
	ErrModelUnavailable = errors.New("model server unavailable")

	// ErrEmptyModelResponse indicates the model server answered without text.
	ErrEmptyModelResponse = errors.New("empty model response")

	// ErrInvalidModelResponse indicates the model text could not be turned into a result.
	ErrInvalidModelResponse = errors.New("invalid model response format")

	// ErrProcessTimeout indicates a subprocess was killed at its deadline.
	ErrProcessTimeout = errors.New("subprocess timeout")

	// ErrSubprocessFailed indicates a subprocess exited with a non-zero code.
	ErrSubprocessFailed = errors.New("subprocess failed")

	// ErrUnparseableOutput indicates a collaborator produced output that could not be decoded.
	ErrUnparseableOutput = errors.New("unparseable output")

	// ErrOCRUnavailable indicates the OCR service failed or is not reachable.
	ErrOCRUnavailable = errors.New("OCR service unavailable")

	// ErrFacilityLookup indicates the map-data query failed.
	ErrFacilityLookup = errors.New("facility lookup failed")

	// ErrQuotaExceeded indicates a store slot write exceeded its quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorKind classifies failures the way responses report them.
type ErrorKind string

const (
	KindInput      ErrorKind = "input"
	KindDependency ErrorKind = "dependency"
	KindTimeout    ErrorKind = "timeout"
	KindStorage    ErrorKind = "storage"
	KindInternal   ErrorKind = "internal"
)

// CallError wraps an error with the operation and its kind.
type CallError struct {
	// Op is the operation that failed.
	Op string

	// Kind is the failure class.
	Kind ErrorKind

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CallError) Unwrap() error {
	return e.Err
}

// WrapError creates a new CallError with context.
func WrapError(op string, err error, kind ErrorKind) *CallError {
	return &CallError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// KindOf reports the kind of err, or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// IsTimeout checks if an error is a deadline failure.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrModelTimeout) || errors.Is(err, ErrProcessTimeout) {
		return true
	}
	return KindOf(err) == KindTimeout
}

// ProcessError carries the exit status and raw stderr of a failed subprocess.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("exit status %d", e.ExitCode)
}

// Unwrap lets errors.Is match ErrSubprocessFailed.
func (e *ProcessError) Unwrap() error {
	return ErrSubprocessFailed
}
