package leapsec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tscale/internal/civil"
	"github.com/roach88/tscale/internal/timeerr"
)

// Document is the serialized form of a table shared by the YAML and CUE
// loaders.
type Document struct {
	BaseOffset  *int64          `json:"base_offset" yaml:"base_offset"`
	LeapSeconds []DocumentEntry `json:"leap_seconds" yaml:"leap_seconds"`
}

// DocumentEntry is one insertion. Date is informational; when present it
// must name the same day as MJD.
type DocumentEntry struct {
	MJD        int64  `json:"mjd" yaml:"mjd"`
	Adjustment int    `json:"adjustment" yaml:"adjustment"`
	Date       string `json:"date,omitempty" yaml:"date,omitempty"`
}

// LoadYAML reads a table document. Unknown fields are rejected.
func LoadYAML(r io.Reader) (*Table, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, &timeerr.Error{
			Code:    timeerr.CodeParse,
			Op:      "leapsec.LoadYAML",
			Message: "malformed table document",
			Err:     err,
		}
	}
	return doc.Table("leapsec.LoadYAML")
}

// Table validates the document and builds a table from it.
func (d *Document) Table(op string) (*Table, error) {
	if d.BaseOffset == nil {
		return nil, timeerr.Validation(op, "base_offset is required")
	}
	entries := make([]Entry, 0, len(d.LeapSeconds))
	for _, e := range d.LeapSeconds {
		if e.Date != "" {
			if want := civil.FromMJD(e.MJD).String(); want != e.Date {
				return nil, timeerr.Validation(op, "MJD %d is %s, not %s", e.MJD, want, e.Date)
			}
		}
		entries = append(entries, Entry{MJD: e.MJD, Adjustment: e.Adjustment})
	}
	t, err := New(*d.BaseOffset, entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Document returns the serialized form of t with dates filled in.
func (t *Table) Document() Document {
	base := t.base
	doc := Document{BaseOffset: &base, LeapSeconds: make([]DocumentEntry, len(t.entries))}
	for i, e := range t.entries {
		doc.LeapSeconds[i] = DocumentEntry{
			MJD:        e.MJD,
			Adjustment: e.Adjustment,
			Date:       civil.FromMJD(e.MJD).String(),
		}
	}
	return doc
}

// WriteYAML writes t in the format read by LoadYAML.
func (t *Table) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.Document()); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	return enc.Close()
}
