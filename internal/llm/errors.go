package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
)

// Kind is the normalized category of a gateway failure.
type Kind string

const (
	KindUnavailable Kind = "backend_unavailable"
	KindThrottled   Kind = "throttled"
	KindMalformed   Kind = "malformed_response"
	KindCancelled   Kind = "cancelled"
)

var (
	ErrUnavailable = errors.New("llm backend unavailable")
	ErrThrottled   = errors.New("llm rate limited")
	ErrMalformed   = errors.New("llm malformed response")
	ErrCancelled   = errors.New("llm call cancelled")

	errEmptyResponse = errors.New("empty response from LLM")
)

// Error is the only error shape the gateway returns. Callers never see
// provider-specific error types except through Unwrap.
type Error struct {
	Kind     Kind
	Provider Provider
	Op       string
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Provider != "" {
		sb.WriteString(" (")
		sb.WriteString(string(e.Provider))
		sb.WriteString(")")
	}
	if e.Op != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Op)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the per-kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrThrottled:
		return e.Kind == KindThrottled
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrCancelled:
		return e.Kind == KindCancelled
	}
	return false
}

// NewError wraps err with a kind. Useful for Backend implementations outside
// this package, including test fakes.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of a gateway error, classifying raw errors if needed.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Classify(err)
}

// Retryable reports whether a failed call is worth repeating.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindUnavailable, KindThrottled:
		return true
	}
	return false
}

// Classify maps a raw provider error to a Kind. Context cancellation of the
// caller must be checked before calling this; a deadline here is treated as
// a backend timeout.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUnavailable
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindMalformed
	}

	errStr := strings.ToLower(err.Error())

	// Rate limit errors
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "resource_exhausted") {
		return KindThrottled
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnavailable
	}

	if strings.Contains(errStr, "unmarshal") ||
		strings.Contains(errStr, "invalid character") ||
		strings.Contains(errStr, "unexpected end of json") {
		return KindMalformed
	}

	return KindUnavailable
}

func (g *Gateway) wrap(ctx context.Context, op string, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		if !errors.Is(err, cerr) {
			err = fmt.Errorf("%w: %w", cerr, err)
		}
		return &Error{Kind: KindCancelled, Provider: g.provider, Op: op, Err: err}
	}
	return &Error{Kind: Classify(err), Provider: g.provider, Op: op, Err: err}
}
