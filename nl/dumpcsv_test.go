package nl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/netlinkclient/nlcore/nl"
)

func TestDumpAttributesCSV(t *testing.T) {
	m := nl.AllocateSimple(1, 0)
	if err := m.PutAttr(1, false, []byte("abc")); err != nil {
		t.Fatalf("PutAttr: %v", err)
	}
	if err := m.PutAttr(2, true, []byte{0xAB, 0xCD}); err != nil {
		t.Fatalf("PutAttr: %v", err)
	}

	var buf bytes.Buffer
	if err := nl.DumpAttributesCSV(m, 0, &buf); err != nil {
		t.Fatalf("DumpAttributesCSV: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 { // header + 2 rows
		t.Fatalf("DumpAttributesCSV produced %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "abcd") {
		t.Errorf("DumpAttributesCSV() = %q, want hex-encoded value abcd", out)
	}
}

func TestDumpAttributesCSVSkipsFamilyHeader(t *testing.T) {
	m := nl.AllocateSimple(1, 0)
	if err := m.Append(make([]byte, 8), 0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := m.PutAttr(3, false, []byte("x")); err != nil {
		t.Fatalf("PutAttr: %v", err)
	}

	var buf bytes.Buffer
	if err := nl.DumpAttributesCSV(m, 8, &buf); err != nil {
		t.Fatalf("DumpAttributesCSV: %v", err)
	}
	if !strings.Contains(buf.String(), "3,false,1,78") {
		t.Errorf("DumpAttributesCSV() = %q, want a row for type 3 with hex value 78", buf.String())
	}
}
