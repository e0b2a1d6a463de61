package schema

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qubeshub/com-oaipmh/models"
)

type stubSchema struct {
	prefix string
	// broad accepts any prefix, to exercise the first-match tie-break.
	broad bool
}

func (s *stubSchema) Prefix() string         { return s.prefix }
func (s *stubSchema) Namespace() string      { return "urn:" + s.prefix }
func (s *stubSchema) SchemaLocation() string { return "urn:" + s.prefix + ".xsd" }

func (s *stubSchema) Handles(requested string) bool {
	return s.broad || strings.EqualFold(requested, s.prefix)
}

func (s *stubSchema) Sets(parent *etree.Element, sets []models.Set)                  {}
func (s *stubSchema) Records(parent *etree.Element, recs []models.Record, meta bool) {}
func (s *stubSchema) Record(parent *etree.Element, rec models.Record)                {}

func TestResolvePicksFirstMatch(t *testing.T) {
	first := &stubSchema{prefix: "oai_dc"}
	second := &stubSchema{prefix: "mods"}
	greedy := &stubSchema{prefix: "any", broad: true}
	r := NewRegistry(first, second, greedy)

	got, err := r.Resolve("mods")
	require.NoError(t, err)
	assert.Same(t, second, got)

	// The greedy schema also handles oai_dc, but discovery order wins.
	got, err = r.Resolve("oai_dc")
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestResolveUnknownPrefix(t *testing.T) {
	r := NewRegistry(&stubSchema{prefix: "oai_dc"})

	_, err := r.Resolve("marc21")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSchema)
}

func TestRegisterAppends(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.All())

	r.Register(&stubSchema{prefix: "oai_dc"})
	r.Register(&stubSchema{prefix: "mods"})
	require.Len(t, r.All(), 2)
	assert.Equal(t, "oai_dc", r.All()[0].Prefix())
}
