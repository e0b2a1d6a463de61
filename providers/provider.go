// Package providers defines the capability contract content providers
// implement and the keyed registry the orchestrator aggregates over.
package providers

import (
	"strings"

	"github.com/qubeshub/com-oaipmh/models"
)

// Provider is implemented by every content source. All query methods
// return SQL fragments that project the shared Record/Set column shape so
// the orchestrator can combine them with UNION; an empty string means
// "not applicable to this provider".
type Provider interface {
	// Name is the registry key the provider is registered under by default.
	Name() string

	// Sets returns a fragment enumerating the provider's sets.
	Sets() string

	// Records returns a fragment enumerating the records matching filter.
	Records(filter models.RecordFilter) string

	// Matches reports whether the provider owns the identifier.
	Matches(identifier string) bool

	// Record returns a query resolving the identifier to a single record.
	Record(identifier string) string

	// PostRecords is applied to every fetched page, in registration order
	// across all providers. Hooks may filter, transform or enrich rows but
	// each returned row must stay renderable by the active schema.
	PostRecords(records []models.Record) []models.Record
}

// Registry holds providers under distinct keys. Iteration follows first
// registration order; re-registering a key replaces the provider in place.
// Populated at startup, read-only afterwards.
type Registry struct {
	keys  []string
	byKey map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{byKey: map[string]Provider{}}
}

// Register adds a provider under key. The last registration for a given
// key wins; the key keeps its original position in iteration order.
func (r *Registry) Register(key string, p Provider) {
	if _, ok := r.byKey[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.byKey[key] = p
}

// All returns the providers in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.byKey[k])
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.keys)
}

// QuoteLiteral escapes a string for embedding in a SQL fragment. Fragments
// are composed textually, so providers must quote every interpolated value.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
