package workflow

import (
	"errors"
	"fmt"

	"github.com/josephgoksu/agentwriting/internal/llm"
)

// ErrorKind is the caller-visible failure category of a run.
type ErrorKind string

const (
	KindInvalidInstruction ErrorKind = "invalid_instruction"
	KindBackendUnavailable ErrorKind = "backend_unavailable"
	KindThrottled          ErrorKind = "throttled"
	KindMalformedResponse  ErrorKind = "malformed_response"
	KindNoContentGenerated ErrorKind = "no_content_generated"
	KindCancelled          ErrorKind = "cancelled"
)

var (
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrThrottled          = errors.New("throttled")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrNoContentGenerated = errors.New("no content generated")
	ErrCancelled          = errors.New("cancelled")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidInstruction: ErrInvalidInstruction,
	KindBackendUnavailable: ErrBackendUnavailable,
	KindThrottled:          ErrThrottled,
	KindMalformedResponse:  ErrMalformedResponse,
	KindNoContentGenerated: ErrNoContentGenerated,
	KindCancelled:          ErrCancelled,
}

// Error is the single error type Run returns. Cause keeps the underlying
// chain for logging; retry and backoff detail stays internal.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the per-kind sentinels, so errors.Is(err, ErrCancelled) works.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the ErrorKind of err, or "" if err is not a run error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// fromGateway translates a gateway failure into a run error.
func fromGateway(msg string, err error) *Error {
	switch llm.KindOf(err) {
	case llm.KindThrottled:
		return newError(KindThrottled, msg, err)
	case llm.KindMalformed:
		return newError(KindMalformedResponse, msg, err)
	case llm.KindCancelled:
		return newError(KindCancelled, msg, err)
	default:
		return newError(KindBackendUnavailable, msg, err)
	}
}

// IterationError records a writing pass that was skipped after its retries.
type IterationError struct {
	Iteration int
	Attempts  int
	Kind      llm.Kind
	Err       error
}

func (e IterationError) Error() string {
	return fmt.Sprintf("iteration %d failed after %d attempt(s): %v", e.Iteration, e.Attempts, e.Err)
}

func (e IterationError) Unwrap() error { return e.Err }
