package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qubeshub/com-oaipmh/config"
	"github.com/qubeshub/com-oaipmh/models"
)

func newProvider() *Provider {
	return New(&config.Config{RepositoryID: "demo", BaseURL: "https://repo.example.org/"}, zap.NewNop())
}

func TestRecordsFragmentOnlyStandalone(t *testing.T) {
	p := newProvider()

	q := p.Records(models.RecordFilter{})
	assert.Contains(t, q, "FROM resources")
	assert.Contains(t, q, "standalone")
}

func TestRecordsFragmentSetFilter(t *testing.T) {
	p := newProvider()

	q := p.Records(models.RecordFilter{Set: "resources:datasets"})
	assert.Contains(t, q, "type = 'datasets'")

	assert.Empty(t, p.Records(models.RecordFilter{Set: "publications:articles"}))
}

func TestMatchesOwnIdentifiersOnly(t *testing.T) {
	p := newProvider()

	assert.True(t, p.Matches("oai:demo:resources/9"))
	assert.False(t, p.Matches("oai:demo:publications/9"))
}

func TestMatchesLogsUnparsableLocalID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := New(&config.Config{RepositoryID: "demo"}, zap.New(core))

	assert.False(t, p.Matches("oai:demo:resources/nine"))
	assert.Equal(t, 1, logs.FilterMessage("unparsable local id in identifier").Len())
}

func TestPostRecordsAbsolutizesLinks(t *testing.T) {
	p := newProvider()

	records := []models.Record{
		{Type: "dataset", Source: "/resources/9"},
		{Type: "dataset", Source: "https://elsewhere.example.org/r/1"},
		{Type: "publication", Source: "/papers/3"},
	}
	out := p.PostRecords(records)

	assert.Equal(t, "https://repo.example.org/resources/9", out[0].Source)
	assert.Equal(t, "https://elsewhere.example.org/r/1", out[1].Source)
	// Publication rows belong to the other provider and stay untouched.
	assert.Equal(t, "/papers/3", out[2].Source)
}
