package nl

import (
	"encoding/hex"
	"io"

	"github.com/gocarina/gocsv"
)

// attrRow is one CSV row in a DumpAttributesCSV export: a flattened view
// of an Attr suitable for spreadsheet inspection.
type attrRow struct {
	Type   uint16 `csv:"type"`
	Nested bool   `csv:"nested"`
	Len    int    `csv:"len"`
	Value  string `csv:"value_hex"`
}

// DumpAttributesCSV parses msg's attribute table, following a
// familyHeaderLen-byte fixed family header (0 if the payload is bare
// attributes), and writes it to w as CSV, one row per attribute. It is
// a debug/inspection sink, not part of the dispatch path; callers
// typically invoke it from a custom VALID hook while chasing down a
// malformed record.
func DumpAttributesCSV(msg *Message, familyHeaderLen int, w io.Writer) error {
	region, err := msg.AttrRegion(familyHeaderLen)
	if err != nil {
		return err
	}
	attrs, err := ParseAttrs(region)
	if err != nil {
		return err
	}
	rows := make([]*attrRow, len(attrs))
	for i, a := range attrs {
		rows[i] = &attrRow{
			Type:   a.Type,
			Nested: a.Nested,
			Len:    len(a.Value),
			Value:  hex.EncodeToString(a.Value),
		}
	}
	return gocsv.Marshal(rows, w)
}
