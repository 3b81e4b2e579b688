package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/metrics"
)

// Registry maps backend selectors to providers and applies the shared failure
// policy: safety-filter rejections degrade to the sentinel reply, everything
// else propagates typed.
type Registry struct {
	providers      map[string]Provider
	defaultBackend string
	log            zerolog.Logger
}

// NewRegistry creates an empty registry with a default backend selector.
func NewRegistry(defaultBackend string, log zerolog.Logger) *Registry {
	return &Registry{
		providers:      make(map[string]Provider),
		defaultBackend: defaultBackend,
		log:            log.With().Str("component", "llm").Logger(),
	}
}

// Register adds a provider under a backend name.
func (r *Registry) Register(name string, p Provider) {
	r.providers[name] = p
}

// Has reports whether a backend name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the default backend selector.
func (r *Registry) Default() string {
	return r.defaultBackend
}

// Generate runs one generation call against the named backend. An
// unregistered name is fatal to the caller; a rejected (safety-filtered)
// response is converted to the sentinel reply.
func (r *Registry) Generate(ctx context.Context, backend string, turns []Turn, params Params) (string, error) {
	p, ok := r.providers[backend]
	if !ok {
		r.log.Error().Str("backend", backend).Msg("generation requested for unregistered backend")
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	start := time.Now()
	text, err := p.Generate(ctx, turns, params)
	metrics.LLMCallDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())

	var be *BackendError
	if errors.As(err, &be) && be.Kind == FailureRejected {
		r.log.Warn().Str("backend", backend).Err(err).Msg("backend rejected request, using sentinel reply")
		metrics.LLMCallsTotal.WithLabelValues(backend, "rejected").Inc()
		return BlockedReply, nil
	}
	if err != nil {
		r.log.Warn().Str("backend", backend).Err(err).Msg("generation call failed")
		metrics.LLMCallsTotal.WithLabelValues(backend, "error").Inc()
		return "", err
	}

	metrics.LLMCallsTotal.WithLabelValues(backend, "ok").Inc()
	return text, nil
}
