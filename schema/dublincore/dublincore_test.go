package dublincore

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qubeshub/com-oaipmh/models"
)

type parsedRecord struct {
	Header struct {
		Status     string `xml:"status,attr"`
		Identifier string `xml:"identifier"`
		Datestamp  string `xml:"datestamp"`
	} `xml:"header"`
	Metadata *struct {
		DC struct {
			Title    string `xml:"title"`
			Creator  string `xml:"creator"`
			Source   string `xml:"source"`
			Language string `xml:"language"`
		} `xml:"dc"`
	} `xml:"metadata"`
}

func render(t *testing.T, build func(parent *etree.Element)) string {
	t.Helper()
	doc := etree.NewDocument()
	build(doc.CreateElement("body"))
	out, err := doc.WriteToString()
	require.NoError(t, err)
	return out
}

func TestHandles(t *testing.T) {
	dc := New()
	assert.True(t, dc.Handles("oai_dc"))
	assert.True(t, dc.Handles("OAI_DC"))
	assert.False(t, dc.Handles("mods"))
	assert.False(t, dc.Handles(""))
}

func TestRecordRendersHeaderAndMetadata(t *testing.T) {
	rec := models.Record{
		Identifier: "oai:demo:publications/7",
		Datestamp:  time.Date(2024, 3, 9, 11, 30, 0, 0, time.UTC),
		Title:      "On Testing",
		Creator:    "Doe, J.",
		Source:     "https://doi.org/10.1000/x",
		Language:   "en",
	}

	out := render(t, func(parent *etree.Element) {
		New().Record(parent, rec)
	})

	var body struct {
		Record parsedRecord `xml:"record"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &body))
	assert.Equal(t, "oai:demo:publications/7", body.Record.Header.Identifier)
	assert.Equal(t, "2024-03-09T11:30:00Z", body.Record.Header.Datestamp)
	require.NotNil(t, body.Record.Metadata)
	assert.Equal(t, "On Testing", body.Record.Metadata.DC.Title)
	assert.Equal(t, "Doe, J.", body.Record.Metadata.DC.Creator)
	assert.Equal(t, "en", body.Record.Metadata.DC.Language)
}

func TestTextIsEscaped(t *testing.T) {
	rec := models.Record{
		Identifier: "oai:demo:publications/9",
		Datestamp:  time.Now(),
		Title:      `1 < 2 & "three"`,
	}

	out := render(t, func(parent *etree.Element) {
		New().Record(parent, rec)
	})

	var body struct {
		Record parsedRecord `xml:"record"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &body), "rendered document must stay parseable: %s", out)
	assert.Equal(t, `1 < 2 & "three"`, body.Record.Metadata.DC.Title)
}

func TestDeletedRecordHasNoMetadata(t *testing.T) {
	rec := models.Record{
		Identifier: "oai:demo:publications/8",
		Datestamp:  time.Now(),
		Status:     "deleted",
		Title:      "Withdrawn",
	}

	out := render(t, func(parent *etree.Element) {
		New().Record(parent, rec)
	})

	var body struct {
		Record parsedRecord `xml:"record"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &body))
	assert.Equal(t, "deleted", body.Record.Header.Status)
	assert.Nil(t, body.Record.Metadata)
}

func TestRecordsHeadersOnly(t *testing.T) {
	records := []models.Record{
		{Identifier: "oai:demo:resources/1", Datestamp: time.Now(), Title: "A"},
		{Identifier: "oai:demo:resources/2", Datestamp: time.Now(), Title: "B"},
	}

	out := render(t, func(parent *etree.Element) {
		New().Records(parent, records, false)
	})

	var body struct {
		Headers []struct {
			Identifier string `xml:"identifier"`
		} `xml:"header"`
		Records []parsedRecord `xml:"record"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &body))
	assert.Len(t, body.Headers, 2)
	assert.Empty(t, body.Records)
}

func TestSets(t *testing.T) {
	sets := []models.Set{
		{Spec: "publications:articles", Name: "Articles"},
		{Spec: "resources:datasets", Name: "Datasets", Description: "Curated data"},
	}

	out := render(t, func(parent *etree.Element) {
		New().Sets(parent, sets)
	})

	var body struct {
		Sets []struct {
			Spec string `xml:"setSpec"`
			Name string `xml:"setName"`
		} `xml:"set"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &body))
	require.Len(t, body.Sets, 2)
	assert.Equal(t, "publications:articles", body.Sets[0].Spec)
	assert.Equal(t, "Datasets", body.Sets[1].Name)
	assert.Contains(t, out, "Curated data")
}
