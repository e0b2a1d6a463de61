package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qubeshub/com-oaipmh/models"
)

// listRecords answers ListIdentifiers and ListRecords. withMetadata
// selects whether full records or headers only are rendered.
func (s *Service) listRecords(p Params, withMetadata bool) error {
	verb := "ListIdentifiers"
	if withMetadata {
		verb = "ListRecords"
	}

	prefix := p.MetadataPrefix
	start := 0
	limit := s.pageLimit()

	// A supplied token is not required to exist; an unknown or expired one
	// starts the listing over. A token minted under a different metadata
	// prefix is rejected: format continuity is enforced.
	if p.ResumptionToken != "" {
		state, err := s.tokens.Get(p.ResumptionToken)
		if err != nil {
			return fmt.Errorf("resumption token lookup: %w", err)
		}
		if state != nil {
			if prefix != "" && !strings.EqualFold(prefix, state.Prefix) {
				s.protocolError(BadResumptionToken, "token was issued for metadata prefix "+state.Prefix)
				return nil
			}
			prefix = state.Prefix
			start = state.Start + state.Limit
			limit = state.Limit
		}
	}
	if prefix == "" {
		if p.ResumptionToken == "" {
			s.protocolError(BadArgument, verb+" requires metadataPrefix")
			return nil
		}
		prefix = s.cfg.MetadataPrefix
	}
	if !s.bindRequestedSchema(prefix) {
		return nil
	}

	filter, ok := s.recordFilter(p)
	if !ok {
		return nil
	}

	var fragments []string
	for _, provider := range s.providers.All() {
		if q := provider.Records(filter); q != "" {
			fragments = append(fragments, q)
		}
	}
	if len(fragments) == 0 {
		s.protocolError(NoRecordsMatch, "")
		return nil
	}
	union := strings.Join(fragments, " UNION ")

	// Mint and persist the continuation token before any query executes,
	// so a dropped response can always be retried without losing the page.
	key := uuid.NewString()
	expires := s.now().Add(time.Duration(s.cfg.TokenTTLMinutes) * time.Minute)
	err := s.tokens.Set(models.ResumptionToken{
		Token:     key,
		Start:     start,
		Limit:     limit,
		Prefix:    s.active.Prefix(),
		ExpiresAt: expires,
	})
	if err != nil {
		return fmt.Errorf("persist resumption token: %w", err)
	}

	total, err := s.exec.Count(union)
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	records, err := s.exec.Records(union, limit, start)
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}
	if len(records) == 0 {
		s.protocolError(NoRecordsMatch, "")
		return nil
	}

	// Post-record hooks run in registration order over the whole page.
	for _, provider := range s.providers.All() {
		records = provider.PostRecords(records)
	}

	el := s.root.CreateElement(verb)
	s.active.Records(el, records, withMetadata)

	if start+limit < total {
		token := el.CreateElement("resumptionToken")
		token.CreateAttr("completeListSize", strconv.Itoa(total))
		token.CreateAttr("cursor", strconv.Itoa(start+limit))
		token.CreateAttr("expirationDate", expires.UTC().Format(utcFormat))
		token.SetText(key)
	}
	return nil
}

// recordFilter parses from/until/set. Malformed datestamps render
// badArgument and report ok=false.
func (s *Service) recordFilter(p Params) (models.RecordFilter, bool) {
	from, err := parseDatestamp(p.From, false)
	if err != nil {
		s.protocolError(BadArgument, "malformed from argument")
		return models.RecordFilter{}, false
	}
	until, err := parseDatestamp(p.Until, true)
	if err != nil {
		s.protocolError(BadArgument, "malformed until argument")
		return models.RecordFilter{}, false
	}
	return models.RecordFilter{From: from, Until: until, Set: p.Set}, true
}

func (s *Service) pageLimit() int {
	limit := s.cfg.PageLimit
	if limit <= 0 {
		limit = 50
	}
	if s.cfg.PageLimitMax > 0 && limit > s.cfg.PageLimitMax {
		limit = s.cfg.PageLimitMax
	}
	return limit
}

// parseDatestamp accepts both protocol granularities. A date-only until
// value is widened to the end of that day so the bound stays inclusive.
func parseDatestamp(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(utcFormat, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}
	return &t, nil
}
