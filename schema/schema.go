// Package schema defines the metadata-format contract and the registry
// that resolves a requested metadata prefix to a handler.
package schema

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/qubeshub/com-oaipmh/models"
)

// ErrNoSchema is returned when no registered schema handles a prefix.
// At service construction this is a deployment fault; for a client-supplied
// prefix the caller maps it to the cannotDisseminateFormat protocol error.
var ErrNoSchema = errors.New("no registered schema handles the requested prefix")

// Schema is a metadata-format handler. One schema is active per request;
// it renders sets, record pages and single records into the response
// document the orchestrator is building.
type Schema interface {
	// Prefix is the unique metadata prefix, e.g. "oai_dc".
	Prefix() string
	Namespace() string
	SchemaLocation() string

	// Handles reports whether this schema can serve the requested prefix.
	Handles(prefix string) bool

	// Sets renders the set list under parent.
	Sets(parent *etree.Element, sets []models.Set)

	// Records renders a record page under parent. With metadata false only
	// the headers are emitted (ListIdentifiers).
	Records(parent *etree.Element, records []models.Record, metadata bool)

	// Record renders one full record under parent (GetRecord).
	Record(parent *etree.Element, record models.Record)
}

// Registry holds the schemas known to the service in registration order.
// It is populated once at startup and read-only afterwards.
type Registry struct {
	schemas []Schema
}

// NewRegistry creates a registry holding the given schemas.
func NewRegistry(schemas ...Schema) *Registry {
	return &Registry{schemas: schemas}
}

// Register appends a schema. Registration order is resolution order.
func (r *Registry) Register(s Schema) {
	r.schemas = append(r.schemas, s)
}

// All returns the registered schemas in registration order.
func (r *Registry) All() []Schema {
	return r.schemas
}

// Resolve returns the first registered schema whose Handles predicate
// accepts the prefix. First match wins; later schemas are not consulted.
func (r *Registry) Resolve(prefix string) (Schema, error) {
	for _, s := range r.schemas {
		if s.Handles(prefix) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("resolve %q: %w", prefix, ErrNoSchema)
}
