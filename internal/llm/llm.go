// Package llm normalizes interchangeable text-generation backends behind a
// single call contract.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role tags one turn of a generation request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged text turn of a generation request.
type Turn struct {
	Role    Role
	Content string
}

// Params carries generation parameters.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// DefaultParams mirrors the original service defaults.
func DefaultParams() Params {
	return Params{Temperature: 0.2, MaxTokens: 512}
}

// Provider is one generation backend. Each implementation owns its wire shape
// and role mapping; callers never branch on backend identity.
type Provider interface {
	Generate(ctx context.Context, turns []Turn, params Params) (string, error)
}

// BlockedReply is the fixed sentinel returned when a backend's safety filter
// withholds a response, so downstream broadcast always has content to show.
const BlockedReply = "(the model declined to answer this request)"

// ErrUnknownBackend is returned when a backend selector is not registered.
// It indicates a configuration defect, not a runtime condition.
var ErrUnknownBackend = errors.New("unknown llm backend")

// FailureKind classifies backend failures.
type FailureKind string

const (
	// FailureUnavailable covers network, auth and timeout failures.
	FailureUnavailable FailureKind = "unavailable"
	// FailureRejected covers safety-filter and policy blocks.
	FailureRejected FailureKind = "rejected"
)

// BackendError is a typed failure from a generation backend.
type BackendError struct {
	Backend string
	Kind    FailureKind
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// unavailable wraps err as a FailureUnavailable backend error.
func unavailable(backend string, err error) error {
	return &BackendError{Backend: backend, Kind: FailureUnavailable, Err: err}
}

// rejected wraps err as a FailureRejected backend error.
func rejected(backend string, err error) error {
	return &BackendError{Backend: backend, Kind: FailureRejected, Err: err}
}
