package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type stubProvider struct {
	reply string
	err   error
}

func (s *stubProvider) Generate(ctx context.Context, turns []Turn, params Params) (string, error) {
	return s.reply, s.err
}

func TestRegistryGenerate(t *testing.T) {
	r := NewRegistry("a", zerolog.Nop())
	r.Register("a", &stubProvider{reply: "hello"})

	got, err := r.Generate(context.Background(), "a", []Turn{{Role: RoleUser, Content: "hi"}}, DefaultParams())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "hello" {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestRegistryUnknownBackend(t *testing.T) {
	r := NewRegistry("a", zerolog.Nop())

	_, err := r.Generate(context.Background(), "missing", nil, DefaultParams())
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestRegistryRejectionDegradesToSentinel(t *testing.T) {
	r := NewRegistry("a", zerolog.Nop())
	r.Register("a", &stubProvider{err: rejected("a", errors.New("safety block"))})

	got, err := r.Generate(context.Background(), "a", nil, DefaultParams())
	if err != nil {
		t.Fatalf("expected rejection to degrade, got error %v", err)
	}
	if got != BlockedReply {
		t.Fatalf("expected sentinel reply, got %q", got)
	}
}

func TestRegistryUnavailablePropagates(t *testing.T) {
	r := NewRegistry("a", zerolog.Nop())
	r.Register("a", &stubProvider{err: unavailable("a", errors.New("connection refused"))})

	_, err := r.Generate(context.Background(), "a", nil, DefaultParams())
	var be *BackendError
	if !errors.As(err, &be) || be.Kind != FailureUnavailable {
		t.Fatalf("expected unavailable backend error, got %v", err)
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry("b", zerolog.Nop())
	r.Register("b", &stubProvider{})
	r.Register("a", &stubProvider{})

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
	if !r.Has("a") || r.Has("c") {
		t.Fatal("Has gave wrong answers")
	}
	if r.Default() != "b" {
		t.Fatalf("unexpected default: %q", r.Default())
	}
}
