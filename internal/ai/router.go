// Package ai routes chat requests across a fixed fallback order of
// providers, skipping ones recently marked unhealthy or over their
// per-minute request budget.
package ai

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var (
	// ErrAllProvidersBusy is returned when every candidate was skipped or
	// failed; it is distinguishable from any per-provider error.
	ErrAllProvidersBusy = errors.New("all AI providers busy or unavailable")

	// Providers wrap their failures in these sentinels so the router can
	// pick the right unhealthy TTL.
	ErrProviderAuth        = errors.New("provider auth or billing failure")
	ErrProviderRateLimited = errors.New("provider rate limited")
)

const (
	authFailureTTL      = 5 * time.Minute
	rateLimitFailureTTL = 60 * time.Second
)

// Provider is one upstream chat backend.
type Provider interface {
	Name() string
	Chat(ctx context.Context, prompt string) (string, error)
}

// Router tries providers in a fixed fallback order, starting from the
// preferred one. Unhealthy status is cached with a TTL and request rates are
// tracked over a rolling one-minute window per provider.
type Router struct {
	providers []Provider
	rpmBudget int

	mu             sync.Mutex
	unhealthyUntil map[string]time.Time
	requests       map[string][]time.Time
	now            func() time.Time
}

func NewRouter(providers []Provider, rpmBudget int) *Router {
	return &Router{
		providers:      providers,
		rpmBudget:      rpmBudget,
		unhealthyUntil: make(map[string]time.Time),
		requests:       make(map[string][]time.Time),
		now:            time.Now,
	}
}

// Chat sends the prompt to the first available provider, beginning with the
// preferred one and continuing through the fallback order.
func (r *Router) Chat(ctx context.Context, preferred, prompt string) (string, string, error) {
	for _, p := range r.candidates(preferred) {
		if !r.admit(p.Name()) {
			continue
		}

		reply, err := p.Chat(ctx, prompt)
		if err == nil {
			return reply, p.Name(), nil
		}
		r.markFailure(p.Name(), err)
		log.Printf("WARN: AI provider %s failed: %v", p.Name(), err)
	}
	return "", "", ErrAllProvidersBusy
}

// candidates returns the fallback order with the preferred provider first.
func (r *Router) candidates(preferred string) []Provider {
	ordered := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Name() == preferred {
			ordered = append(ordered, p)
		}
	}
	for _, p := range r.providers {
		if p.Name() != preferred {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// admit checks health and the rolling one-minute budget, and on success
// counts the request against the window.
func (r *Router) admit(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()

	if until, ok := r.unhealthyUntil[name]; ok {
		if now.Before(until) {
			return false
		}
		delete(r.unhealthyUntil, name)
	}

	cutoff := now.Add(-time.Minute)
	window := r.requests[name]
	kept := window[:0]
	for _, at := range window {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) >= r.rpmBudget {
		r.requests[name] = kept
		return false
	}
	r.requests[name] = append(kept, now)
	return true
}

func (r *Router) markFailure(name string, err error) {
	var ttl time.Duration
	switch {
	case errors.Is(err, ErrProviderAuth):
		ttl = authFailureTTL
	case errors.Is(err, ErrProviderRateLimited):
		ttl = rateLimitFailureTTL
	default:
		return // Transient failure: try again next request.
	}
	r.mu.Lock()
	r.unhealthyUntil[name] = r.now().Add(ttl)
	r.mu.Unlock()
}

// Healthy reports whether the provider is currently usable, for status
// endpoints.
func (r *Router) Healthy(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.unhealthyUntil[name]
	return !ok || !r.now().Before(until)
}
