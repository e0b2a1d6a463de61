// Package publications exposes published works as harvestable records.
package publications

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/qubeshub/com-oaipmh/config"
	"github.com/qubeshub/com-oaipmh/models"
	"github.com/qubeshub/com-oaipmh/providers"
)

const setPrefix = "publications:"

// Provider contributes query fragments over the publications table.
type Provider struct {
	cfg *config.Config
	log *zap.Logger
}

// New creates the publications provider.
func New(cfg *config.Config, logger *zap.Logger) *Provider {
	return &Provider{cfg: cfg, log: logger}
}

// Name returns the default registry key.
func (p *Provider) Name() string {
	return "publications"
}

// Sets enumerates one set per publication category.
func (p *Provider) Sets() string {
	return `SELECT DISTINCT CONCAT('publications:', category) AS spec, category_name AS name, '' AS description
		FROM publications
		WHERE state = 1 AND category <> ''`
}

// Records enumerates publications matching the filter. Withdrawn
// publications (state 2) surface as deleted records.
func (p *Provider) Records(filter models.RecordFilter) string {
	var b strings.Builder
	b.WriteString(`SELECT ` + p.columns() + `
		FROM publications
		WHERE state IN (1, 2)`)

	if filter.From != nil {
		b.WriteString(" AND updated_at >= " + providers.QuoteLiteral(filter.From.UTC().Format("2006-01-02 15:04:05")))
	}
	if filter.Until != nil {
		b.WriteString(" AND updated_at <= " + providers.QuoteLiteral(filter.Until.UTC().Format("2006-01-02 15:04:05")))
	}
	if filter.Set != "" {
		category, ok := strings.CutPrefix(filter.Set, setPrefix)
		if !ok {
			// Not one of our sets; this provider contributes nothing.
			return ""
		}
		b.WriteString(" AND category = " + providers.QuoteLiteral(category))
	}
	return b.String()
}

// Matches accepts identifiers of the form oai:<repository>:publications/<id>.
func (p *Provider) Matches(identifier string) bool {
	return p.localID(identifier) > 0
}

// Record resolves a matched identifier to a single-record query.
func (p *Provider) Record(identifier string) string {
	id := p.localID(identifier)
	if id == 0 {
		return ""
	}
	return `SELECT ` + p.columns() + `
		FROM publications
		WHERE state IN (1, 2) AND id = ` + strconv.FormatUint(uint64(id), 10)
}

// PostRecords rewrites bare DOIs into resolvable source URLs.
func (p *Provider) PostRecords(records []models.Record) []models.Record {
	for i, rec := range records {
		if rec.Type != "publication" {
			continue
		}
		if rec.Source != "" && !strings.HasPrefix(rec.Source, "http") {
			records[i].Source = "https://doi.org/" + rec.Source
		}
	}
	return records
}

func (p *Provider) columns() string {
	identifier := providers.QuoteLiteral(fmt.Sprintf("oai:%s:publications/", p.cfg.RepositoryID))
	return `CONCAT(` + identifier + `, id) AS identifier,
		updated_at AS datestamp,
		CASE WHEN state = 2 THEN 'deleted' ELSE '' END AS status,
		title AS title,
		authors AS creator,
		category_name AS subject,
		abstract AS description,
		publisher AS publisher,
		TO_CHAR(published_at, 'YYYY-MM-DD') AS date,
		'publication' AS type,
		COALESCE(doi, '') AS source,
		language AS language,
		rights AS rights`
}

func (p *Provider) localID(identifier string) uint {
	prefix := fmt.Sprintf("oai:%s:publications/", p.cfg.RepositoryID)
	rest, ok := strings.CutPrefix(identifier, prefix)
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		p.log.Debug("unparsable local id in identifier",
			zap.String("identifier", identifier), zap.Error(err))
		return 0
	}
	return uint(id)
}
