package domain

import (
	"errors"
	"fmt"
	"strings"

	domaintypes "apnode/internal/domain/types"
)

// Taxonomy sentinels. Every error returned by the core matches exactly one of
// these with errors.Is.
var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a duplicate actor registration.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an unknown actor or missing key material.
	ErrNotFound = errors.New("not found")

	// ErrCrypto marks a decryption, unwrap or key parsing failure.
	ErrCrypto = errors.New("crypto failure")

	// ErrDelivery marks a failed or timed out remote hop. Local persistence
	// has still completed when this is returned.
	ErrDelivery = errors.New("delivery failed")
)

// Specific causes, wrapped inside a taxonomy error.
var (
	ErrPayloadTooLarge = errors.New("payload exceeds direct RSA-OAEP capacity")
	ErrNotEncrypted    = errors.New("entry is not an encrypted envelope")
	ErrWeakKey         = errors.New("RSA modulus below 2048 bits")
)

// Error is a taxonomy error with the failing operation attached.
type Error struct {
	Kind error  // one of the taxonomy sentinels
	Op   string // e.g. "keys.CreateActor"
	Msg  string
	Err  error // optional cause
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Validation returns an ErrValidation error.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Conflict returns an ErrConflict error.
func Conflict(op, format string, args ...any) error {
	return &Error{Kind: ErrConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound error.
func NotFound(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Crypto wraps cause as an ErrCrypto error.
func Crypto(op string, cause error) error {
	return &Error{Kind: ErrCrypto, Op: op, Err: cause}
}

// DeliveryError is the partial-failure state of a send: the outbox and inbox
// writes are committed, the remote hop is not.
type DeliveryError struct {
	Status       domaintypes.DeliveryStatus
	RemoteStatus int
	Detail       string
	Err          error
}

func (e *DeliveryError) Error() string {
	msg := "delivery " + string(e.Status)
	if e.RemoteStatus != 0 {
		msg += fmt.Sprintf(" (remote status %d)", e.RemoteStatus)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil && e.Err.Error() != e.Detail {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDelivery, e.Err}
	}
	return []error{ErrDelivery}
}

// KindOf returns the taxonomy sentinel err matches, or nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrCrypto, ErrDelivery} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
