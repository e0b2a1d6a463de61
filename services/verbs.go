package services

import (
	"fmt"
	"strings"

	"github.com/qubeshub/com-oaipmh/models"
)

// identify renders the repository metadata from configuration.
func (s *Service) identify() {
	el := s.root.CreateElement("Identify")
	el.CreateElement("repositoryName").SetText(s.cfg.RepositoryName)
	el.CreateElement("baseURL").SetText(s.cfg.BaseURL)
	el.CreateElement("protocolVersion").SetText(s.cfg.ProtocolVersion)
	el.CreateElement("adminEmail").SetText(s.cfg.AdminEmail)
	el.CreateElement("earliestDatestamp").SetText(s.cfg.EarliestDatestamp)
	el.CreateElement("deletedRecord").SetText(s.cfg.DeletedRecord)
	el.CreateElement("granularity").SetText(s.cfg.Granularity)
}

// listMetadataFormats renders one entry per registered schema.
func (s *Service) listMetadataFormats() {
	el := s.root.CreateElement("ListMetadataFormats")
	for _, sch := range s.schemas.All() {
		format := el.CreateElement("metadataFormat")
		format.CreateElement("metadataPrefix").SetText(sch.Prefix())
		format.CreateElement("schema").SetText(sch.SchemaLocation())
		format.CreateElement("metadataNamespace").SetText(sch.Namespace())
	}
}

// listSets unions every provider's set fragment. Providers that return no
// fragment are simply not consulted further.
func (s *Service) listSets() error {
	if err := s.bindDefaultSchema(); err != nil {
		return err
	}

	var fragments []string
	for _, provider := range s.providers.All() {
		if q := provider.Sets(); q != "" {
			fragments = append(fragments, q)
		}
	}
	if len(fragments) == 0 {
		s.protocolError(NoSetHierarchy, "")
		return nil
	}

	sets, err := s.exec.Sets(strings.Join(fragments, " UNION "))
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}
	if len(sets) == 0 {
		s.protocolError(NoSetHierarchy, "")
		return nil
	}

	s.active.Sets(s.root.CreateElement("ListSets"), sets)
	return nil
}

// getRecord consults providers in registration order; the first one whose
// match predicate accepts the identifier is used exclusively.
func (s *Service) getRecord(p Params) error {
	if p.Identifier == "" || p.MetadataPrefix == "" {
		s.protocolError(BadArgument, "GetRecord requires identifier and metadataPrefix")
		return nil
	}
	if !s.bindRequestedSchema(p.MetadataPrefix) {
		return nil
	}

	for _, provider := range s.providers.All() {
		if !provider.Matches(p.Identifier) {
			continue
		}

		query := provider.Record(p.Identifier)
		if query == "" {
			break
		}
		record, err := s.exec.Record(query)
		if err != nil {
			return fmt.Errorf("get record %s: %w", p.Identifier, err)
		}
		if record == nil {
			break
		}

		rows := provider.PostRecords([]models.Record{*record})
		if len(rows) == 0 {
			break
		}
		s.active.Record(s.root.CreateElement("GetRecord"), rows[0])
		return nil
	}

	s.protocolError(IDDoesNotExist, "")
	return nil
}
