package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qubeshub/com-oaipmh/models"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string                                { return s.name }
func (s *stubProvider) Sets() string                                { return "" }
func (s *stubProvider) Records(models.RecordFilter) string          { return "" }
func (s *stubProvider) Matches(string) bool                         { return false }
func (s *stubProvider) Record(string) string                        { return "" }
func (s *stubProvider) PostRecords(r []models.Record) []models.Record { return r }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("b", &stubProvider{name: "b"})
	r.Register("a", &stubProvider{name: "a"})
	r.Register("c", &stubProvider{name: "c"})

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].Name())
	assert.Equal(t, "a", all[1].Name())
	assert.Equal(t, "c", all[2].Name())
}

func TestRegisterLastWinsKeepsPosition(t *testing.T) {
	r := NewRegistry()
	r.Register("a", &stubProvider{name: "a1"})
	r.Register("b", &stubProvider{name: "b"})
	r.Register("a", &stubProvider{name: "a2"})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a2", all[0].Name())
	assert.Equal(t, "b", all[1].Name())
	assert.Equal(t, 2, r.Len())
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'plain'", QuoteLiteral("plain"))
	assert.Equal(t, "'O''Brien'", QuoteLiteral("O'Brien"))
	assert.Equal(t, "''", QuoteLiteral(""))
}
