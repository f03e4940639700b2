// Package gateway adapts answer records and report images into model calls and turns the
// replies into validated domain artifacts or typed failures.
package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind string

const (
	MalformedResponse Kind = "malformed_response"
	ServiceDegraded   Kind = "service_degraded"
	TransportError    Kind = "transport_error"
)

// User facing messages per kind.
const (
	msgMalformed = "The coach returned an invalid response. Please try again."
	msgDegraded  = "The coach is having trouble right now. Please try again in a moment."
	msgTransport = "We couldn't reach the coach. Check your connection and try again."
)

// Failure is the only error type the gateway returns for a failed model exchange.
type Failure struct {
	Kind    Kind
	Message string // safe to show to the user
	Err     error  // underlying cause, for logs
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("gateway %s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("gateway %s", f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }

// Retryable is true for every kind; none of them is fatal to the session.
func (f *Failure) Retryable() bool {
	switch f.Kind {
	case MalformedResponse, ServiceDegraded, TransportError:
		return true
	}
	return false
}

// Is matches another *Failure by kind so errors.Is(err, &Failure{Kind: ServiceDegraded}) works.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Kind == f.Kind
}

func malformed(err error) *Failure {
	return &Failure{Kind: MalformedResponse, Message: msgMalformed, Err: err}
}

func degraded(err error) *Failure {
	return &Failure{Kind: ServiceDegraded, Message: msgDegraded, Err: err}
}

func transport(err error) *Failure {
	return &Failure{Kind: TransportError, Message: msgTransport, Err: err}
}

// KindOf returns the failure kind of err, or "" when err is not a gateway failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
