package credentials

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// Scope names the job a lookup is made on behalf of. The empty scope only
// sees global credentials.
type Scope string

// GlobalScope matches credentials that are visible to every job.
const GlobalScope Scope = ""

// Secret wraps an API key so it never leaks through fmt or slog.
type Secret struct {
	value string
}

// NewSecret wraps value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the raw key for use in a request header.
func (s Secret) Reveal() string { return s.value }

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool { return s.value == "" }

func (s Secret) String() string { return redacted(s.value) }

func (s Secret) GoString() string { return "credentials.Secret(" + redacted(s.value) + ")" }

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value { return slog.StringValue(redacted(s.value)) }

func redacted(value string) string {
	if value == "" {
		return ""
	}
	return "******"
}

// Resolver maps a credential reference to its secret. A false result means
// the credential is absent, which callers treat as a normal per-target
// failure. endpoint is the API base URL the secret will be sent to.
type Resolver interface {
	Resolve(ctx context.Context, scope Scope, id, endpoint string) (Secret, bool, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, scope Scope, id, endpoint string) (Secret, bool, error)

func (f ResolverFunc) Resolve(ctx context.Context, scope Scope, id, endpoint string) (Secret, bool, error) {
	return f(ctx, scope, id, endpoint)
}

// Static resolves credentials from an in-memory id → secret map regardless
// of scope or endpoint.
type Static map[string]string

func (s Static) Resolve(_ context.Context, _ Scope, id, _ string) (Secret, bool, error) {
	value, ok := s[strings.TrimSpace(id)]
	if !ok || value == "" {
		return Secret{}, false, nil
	}
	return NewSecret(value), true, nil
}

// Chain tries each resolver in order and returns the first hit. An error from
// one resolver is remembered but does not stop the search.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, scope Scope, id, endpoint string) (Secret, bool, error) {
	var firstErr error
	for _, r := range c {
		if r == nil {
			continue
		}
		secret, ok, err := r.Resolve(ctx, scope, id, endpoint)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return secret, true, nil
		}
	}
	return Secret{}, false, firstErr
}

func endpointHost(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return strings.ToLower(parsed.Hostname())
	}
	return strings.ToLower(strings.TrimSuffix(endpoint, "/"))
}
