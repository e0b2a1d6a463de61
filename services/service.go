// Package services implements the OAI-PMH response orchestrator: verb
// dispatch, schema resolution, provider aggregation and resumption-token
// pagination. One Service instance answers exactly one request.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/qubeshub/com-oaipmh/config"
	"github.com/qubeshub/com-oaipmh/models"
	"github.com/qubeshub/com-oaipmh/providers"
	"github.com/qubeshub/com-oaipmh/schema"
)

const (
	oaiNamespace      = "http://www.openarchives.org/OAI/2.0/"
	oaiSchemaLocation = "http://www.openarchives.org/OAI/2.0/ http://www.openarchives.org/OAI/2.0/OAI-PMH.xsd"
	xsiNamespace      = "http://www.w3.org/2001/XMLSchema-instance"

	utcFormat = "2006-01-02T15:04:05Z"
)

// Executor runs the composed queries. Union composition is the
// orchestrator's job; the executor only executes.
type Executor interface {
	Count(query string) (int, error)
	Records(query string, limit, offset int) ([]models.Record, error)
	Sets(query string) ([]models.Set, error)
	Record(query string) (*models.Record, error)
}

// TokenStore persists resumption-token state across requests. Get returns
// nil for unknown or expired tokens.
type TokenStore interface {
	Get(key string) (*models.ResumptionToken, error)
	Set(token models.ResumptionToken) error
}

// Params carries the parameters of one OAI-PMH request.
type Params struct {
	Verb            string
	Identifier      string
	MetadataPrefix  string
	From            string
	Until           string
	Set             string
	ResumptionToken string
}

// Options wires the collaborators of a Service. Registries are shared
// across requests and must not be mutated after startup.
type Options struct {
	Config    *config.Config
	Logger    *zap.Logger
	Executor  Executor
	Tokens    TokenStore
	Schemas   *schema.Registry
	Providers *providers.Registry

	// Schema, when set, is used as-is for every verb instead of resolving
	// the requested prefix against the registry.
	Schema schema.Schema

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service builds one response document for one request and is discarded
// after serialization.
type Service struct {
	cfg       *config.Config
	log       *zap.Logger
	exec      Executor
	tokens    TokenStore
	schemas   *schema.Registry
	providers *providers.Registry
	now       func() time.Time

	active  schema.Schema
	doc     *etree.Document
	root    *etree.Element
	errCode ErrorCode
}

// New creates a Service. A deployment without any registered schema is a
// configuration fault, reported here rather than per request.
func New(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, errors.New("oaipmh: configuration is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("oaipmh: query executor is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("oaipmh: token store is required")
	}

	schemas := opts.Schemas
	if schemas == nil && opts.Schema != nil {
		schemas = schema.NewRegistry(opts.Schema)
	}
	if schemas == nil || len(schemas.All()) == 0 {
		return nil, errors.New("oaipmh: no metadata schemas registered")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := opts.Providers
	if registry == nil {
		registry = providers.NewRegistry()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		cfg:       opts.Config,
		log:       logger,
		exec:      opts.Executor,
		tokens:    opts.Tokens,
		schemas:   schemas,
		providers: registry,
		active:    opts.Schema,
		now:       now,
	}, nil
}

// Register adds a provider under key. Intended for startup composition;
// registries are read-only once requests are being served.
func (s *Service) Register(key string, p providers.Provider) {
	s.providers.Register(key, p)
}

// Dispatch answers one request. Protocol errors are rendered into the
// document and return nil; only internal faults return an error, in which
// case the document must not be served.
func (s *Service) Dispatch(p Params) error {
	s.begin(p)

	switch p.Verb {
	case "Identify":
		s.identify()
	case "ListMetadataFormats":
		s.listMetadataFormats()
	case "ListSets":
		return s.listSets()
	case "ListIdentifiers":
		return s.listRecords(p, false)
	case "ListRecords":
		return s.listRecords(p, true)
	case "GetRecord":
		return s.getRecord(p)
	default:
		s.protocolError(BadVerb, "")
	}
	return nil
}

// Response serializes the finished document.
func (s *Service) Response() (string, error) {
	if s.doc == nil {
		return "", nil
	}
	return s.doc.WriteToString()
}

// ProtocolError returns the rendered error code, if any.
func (s *Service) ProtocolError() (ErrorCode, bool) {
	return s.errCode, s.errCode != ""
}

// begin emits the envelope: root element, responseDate and the request
// echo. The echo is emitted even when the verb later fails.
func (s *Service) begin(p Params) {
	s.doc = etree.NewDocument()
	s.doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	if s.cfg.StylesheetHref != "" {
		s.doc.CreateProcInst("xml-stylesheet", fmt.Sprintf(`type="text/xsl" href=%q`, s.cfg.StylesheetHref))
	}

	s.root = s.doc.CreateElement("OAI-PMH")
	s.root.CreateAttr("xmlns", oaiNamespace)
	s.root.CreateAttr("xmlns:xsi", xsiNamespace)
	s.root.CreateAttr("xsi:schemaLocation", oaiSchemaLocation)

	s.root.CreateElement("responseDate").SetText(s.now().UTC().Format(utcFormat))

	request := s.root.CreateElement("request")
	if p.Verb != "" {
		request.CreateAttr("verb", p.Verb)
	}
	if p.Verb == "GetRecord" {
		if p.Identifier != "" {
			request.CreateAttr("identifier", p.Identifier)
		}
		if p.MetadataPrefix != "" {
			request.CreateAttr("metadataPrefix", p.MetadataPrefix)
		}
	}
	request.SetText(s.cfg.BaseURL)
}

// protocolError renders the single error element. Codes outside the
// protocol enumeration fall back to badArgument.
func (s *Service) protocolError(code ErrorCode, message string) {
	if !code.Valid() {
		code = BadArgument
	}
	if message == "" {
		message = code.Message()
	}
	s.errCode = code
	el := s.root.CreateElement("error")
	el.CreateAttr("code", string(code))
	el.SetText(message)
	s.log.Debug("protocol error", zap.String("code", string(code)), zap.String("message", message))
}

// bindDefaultSchema resolves the configured default prefix. Failure here
// means the server is misconfigured, so it propagates as a hard fault.
func (s *Service) bindDefaultSchema() error {
	if s.active != nil {
		return nil
	}
	active, err := s.schemas.Resolve(s.cfg.MetadataPrefix)
	if err != nil {
		return fmt.Errorf("default metadata prefix: %w", err)
	}
	s.active = active
	return nil
}

// bindRequestedSchema resolves a client-supplied prefix. An unknown prefix
// is the client's problem: it renders cannotDisseminateFormat and reports
// ok=false.
func (s *Service) bindRequestedSchema(prefix string) bool {
	if s.active != nil {
		return true
	}
	active, err := s.schemas.Resolve(prefix)
	if err != nil {
		s.protocolError(CannotDisseminateFormat, "")
		return false
	}
	s.active = active
	return true
}
