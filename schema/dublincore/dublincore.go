// Package dublincore implements the oai_dc metadata format.
package dublincore

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/qubeshub/com-oaipmh/models"
)

const (
	prefix         = "oai_dc"
	namespace      = "http://www.openarchives.org/OAI/2.0/oai_dc/"
	schemaLocation = "http://www.openarchives.org/OAI/2.0/oai_dc.xsd"
	dcNamespace    = "http://purl.org/dc/elements/1.1/"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"

	datestampFormat = "2006-01-02T15:04:05Z"
)

// DublinCore renders records in the unqualified Dublin Core element set.
type DublinCore struct{}

// New creates the oai_dc handler.
func New() *DublinCore {
	return &DublinCore{}
}

// Prefix returns "oai_dc".
func (d *DublinCore) Prefix() string { return prefix }

// Namespace returns the oai_dc container namespace.
func (d *DublinCore) Namespace() string { return namespace }

// SchemaLocation returns the oai_dc XSD location.
func (d *DublinCore) SchemaLocation() string { return schemaLocation }

// Handles accepts the oai_dc prefix, case-insensitively.
func (d *DublinCore) Handles(requested string) bool {
	return strings.EqualFold(requested, prefix)
}

// Sets renders the set list.
func (d *DublinCore) Sets(parent *etree.Element, sets []models.Set) {
	for _, set := range sets {
		el := parent.CreateElement("set")
		el.CreateElement("setSpec").SetText(set.Spec)
		el.CreateElement("setName").SetText(set.Name)
		if set.Description != "" {
			dc := el.CreateElement("setDescription").CreateElement("oai_dc:dc")
			dc.CreateAttr("xmlns:oai_dc", namespace)
			dc.CreateAttr("xmlns:dc", dcNamespace)
			dc.CreateElement("dc:description").SetText(set.Description)
		}
	}
}

// Records renders a page of records, headers only when metadata is false.
func (d *DublinCore) Records(parent *etree.Element, records []models.Record, metadata bool) {
	for _, rec := range records {
		if !metadata {
			d.header(parent, rec)
			continue
		}
		d.Record(parent, rec)
	}
}

// Record renders one full record. Deleted records carry the tombstone
// header only, never a metadata block.
func (d *DublinCore) Record(parent *etree.Element, rec models.Record) {
	el := parent.CreateElement("record")
	d.header(el, rec)
	if rec.Deleted() {
		return
	}

	dc := el.CreateElement("metadata").CreateElement("oai_dc:dc")
	dc.CreateAttr("xmlns:oai_dc", namespace)
	dc.CreateAttr("xmlns:dc", dcNamespace)
	dc.CreateAttr("xmlns:xsi", xsiNamespace)
	dc.CreateAttr("xsi:schemaLocation", namespace+" "+schemaLocation)

	d.element(dc, "dc:title", rec.Title)
	d.element(dc, "dc:creator", rec.Creator)
	d.element(dc, "dc:subject", rec.Subject)
	d.element(dc, "dc:description", rec.Description)
	d.element(dc, "dc:publisher", rec.Publisher)
	d.element(dc, "dc:date", rec.Date)
	d.element(dc, "dc:type", rec.Type)
	d.element(dc, "dc:identifier", rec.Identifier)
	d.element(dc, "dc:source", rec.Source)
	d.element(dc, "dc:language", rec.Language)
	d.element(dc, "dc:rights", rec.Rights)
}

func (d *DublinCore) header(parent *etree.Element, rec models.Record) {
	h := parent.CreateElement("header")
	if rec.Deleted() {
		h.CreateAttr("status", "deleted")
	}
	h.CreateElement("identifier").SetText(rec.Identifier)
	h.CreateElement("datestamp").SetText(rec.Datestamp.UTC().Format(datestampFormat))
}

func (d *DublinCore) element(parent *etree.Element, name, value string) {
	if value == "" {
		return
	}
	parent.CreateElement(name).SetText(value)
}
