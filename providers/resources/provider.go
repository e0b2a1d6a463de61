// Package resources exposes standalone content resources as harvestable
// records.
package resources

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/qubeshub/com-oaipmh/config"
	"github.com/qubeshub/com-oaipmh/models"
	"github.com/qubeshub/com-oaipmh/providers"
)

const setPrefix = "resources:"

// Provider contributes query fragments over the resources table. Only
// standalone resources are harvestable; children stay internal.
type Provider struct {
	cfg *config.Config
	log *zap.Logger
}

// New creates the resources provider.
func New(cfg *config.Config, logger *zap.Logger) *Provider {
	return &Provider{cfg: cfg, log: logger}
}

// Name returns the default registry key.
func (p *Provider) Name() string {
	return "resources"
}

// Sets enumerates one set per resource type.
func (p *Provider) Sets() string {
	return `SELECT DISTINCT CONCAT('resources:', type) AS spec, type_name AS name, '' AS description
		FROM resources
		WHERE state = 1 AND standalone AND type <> ''`
}

// Records enumerates standalone resources matching the filter. Removed
// resources (state 2) surface as deleted records.
func (p *Provider) Records(filter models.RecordFilter) string {
	var b strings.Builder
	b.WriteString(`SELECT ` + p.columns() + `
		FROM resources
		WHERE state IN (1, 2) AND standalone`)

	if filter.From != nil {
		b.WriteString(" AND updated_at >= " + providers.QuoteLiteral(filter.From.UTC().Format("2006-01-02 15:04:05")))
	}
	if filter.Until != nil {
		b.WriteString(" AND updated_at <= " + providers.QuoteLiteral(filter.Until.UTC().Format("2006-01-02 15:04:05")))
	}
	if filter.Set != "" {
		typ, ok := strings.CutPrefix(filter.Set, setPrefix)
		if !ok {
			return ""
		}
		b.WriteString(" AND type = " + providers.QuoteLiteral(typ))
	}
	return b.String()
}

// Matches accepts identifiers of the form oai:<repository>:resources/<id>.
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
		FROM resources
		WHERE state IN (1, 2) AND standalone AND id = ` + strconv.FormatUint(uint64(id), 10)
}

// PostRecords makes relative resource links absolute against the
// repository base URL.
func (p *Provider) PostRecords(records []models.Record) []models.Record {
	base := strings.TrimSuffix(p.cfg.BaseURL, "/")
	for i, rec := range records {
		if rec.Type == "" || rec.Type == "publication" {
			continue
		}
		if rec.Source != "" && strings.HasPrefix(rec.Source, "/") {
			records[i].Source = base + rec.Source
		}
	}
	return records
}

func (p *Provider) columns() string {
	identifier := providers.QuoteLiteral(fmt.Sprintf("oai:%s:resources/", p.cfg.RepositoryID))
	return `CONCAT(` + identifier + `, id) AS identifier,
		updated_at AS datestamp,
		CASE WHEN state = 2 THEN 'deleted' ELSE '' END AS status,
		title AS title,
		authors AS creator,
		type_name AS subject,
		description AS description,
		'' AS publisher,
		TO_CHAR(published_at, 'YYYY-MM-DD') AS date,
		COALESCE(NULLIF(type_name, ''), 'resource') AS type,
		COALESCE(link, '') AS source,
		language AS language,
		rights AS rights`
}

func (p *Provider) localID(identifier string) uint {
	prefix := fmt.Sprintf("oai:%s:resources/", p.cfg.RepositoryID)
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
