package ena

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

// each decodes every element named local found anywhere in the document.
func each(data []byte, local string, fn func(d *xml.Decoder, start xml.StartElement) error) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != local {
			continue
		}
		if err := fn(d, start); err != nil {
			return err
		}
	}
}

type xmlStudy struct {
	Accession      string `xml:"accession,attr"`
	SubmissionDate string `xml:"submission_date,attr"`
	CenterName     string `xml:"center_name,attr"`
	BrokerName     string `xml:"broker_name,attr"`
	Title          string `xml:"DESCRIPTOR>STUDY_TITLE"`
	Description    string `xml:"DESCRIPTOR>STUDY_DESCRIPTION"`
}

type xmlSample struct {
	Accession      string `xml:"accession,attr"`
	TaxonID        string `xml:"taxon_id,attr"`
	SubmissionDate string `xml:"submission_date,attr"`
	Title          string `xml:"TITLE"`
	Description    string `xml:"DESCRIPTION"`
	Inner          []byte `xml:",innerxml"`
}

type xmlAttribute struct {
	Tag   string `xml:"TAG"`
	Value string `xml:"VALUE"`
}

type xmlRun struct {
	Accession          string `xml:"accession,attr"`
	Alias              string `xml:"alias,attr"`
	InstrumentPlatform string `xml:"instrument_platform,attr"`
	InstrumentModel    string `xml:"instrument_model,attr"`
	BaseCount          string `xml:"base_count,attr"`
	ReadCount          string `xml:"read_count,attr"`
	RunDate            string `xml:"run_date,attr"`
	Title              string `xml:"TITLE"`
	Inner              []byte `xml:",innerxml"`
}

type xmlFile struct {
	Filename                  string `xml:"filename,attr"`
	Filetype                  string `xml:"filetype,attr"`
	Checksum                  string `xml:"checksum,attr"`
	ChecksumMethod            string `xml:"checksum_method,attr"`
	UnencryptedChecksum       string `xml:"unencrypted_checksum,attr"`
	UnencryptedChecksumMethod string `xml:"unencrypted_checksum_method,attr"`
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// wrap re-roots inner XML so each can scan it.
func wrap(inner []byte) []byte {
	out := make([]byte, 0, len(inner)+13)
	out = append(out, "<root>"...)
	out = append(out, inner...)
	return append(out, "</root>"...)
}
