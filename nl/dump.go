package nl

import (
	"fmt"
	"io"
	"strings"
)

var typeNames = map[uint16]string{
	NOOP:    "NOOP",
	ERROR:   "ERROR",
	DONE:    "DONE",
	OVERRUN: "OVERRUN",
}

func typeName(t uint16) string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("<%d>", t)
}

func flagNames(f uint16) string {
	var parts []string
	if f&REQUEST != 0 {
		parts = append(parts, "REQUEST")
	}
	if f&MULTI != 0 {
		parts = append(parts, "MULTI")
	}
	if f&ACK != 0 {
		parts = append(parts, "ACK")
	}
	if f&DUMP_INTR != 0 {
		parts = append(parts, "DUMP_INTR")
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}

// Dump writes a human-readable transcript of the message to w: header
// fields with symbolic type/flags, the payload as hex+ASCII indented
// four spaces per nesting level, the embedded original header if this
// is an ERROR record, and the attribute tree walked recursively with
// nested attributes indented one level deeper. Bytes left over after
// the last attribute are labelled LEFTOVER.
func (m *Message) Dump(w io.Writer) {
	h := m.header()
	fmt.Fprintf(w, "netlink message: len=%d type=%s flags=%s seq=%d port=%d\n",
		h.Len, typeName(h.Type), flagNames(h.Flags), h.Seq, h.PortID)

	payload := m.Payload()
	if h.Type == ERROR && len(payload) >= 4+errorHeaderLen {
		code := int32(native.Uint32(payload[0:4]))
		orig := payload[4 : 4+errorHeaderLen]
		fmt.Fprintf(w, "    error=%d original-header: len=%d type=%s flags=%s seq=%d port=%d\n",
			code,
			native.Uint32(orig[0:4]), typeName(native.Uint16(orig[4:6])),
			flagNames(native.Uint16(orig[6:8])), native.Uint32(orig[8:12]), native.Uint32(orig[12:16]))
		payload = payload[4+errorHeaderLen:]
	}

	dumpHex(w, payload, 1)

	attrs, err := ParseAttrs(payload)
	if len(attrs) > 0 || err == nil {
		dumpAttrs(w, payload, 1)
	}
}

func indent(level int) string { return strings.Repeat("    ", level) }

func dumpHex(w io.Writer, b []byte, level int) {
	const width = 16
	for i := 0; i < len(b); i += width {
		end := i + width
		if end > len(b) {
			end = len(b)
		}
		row := b[i:end]
		fmt.Fprint(w, indent(level))
		for j := 0; j < width; j++ {
			if j < len(row) {
				fmt.Fprintf(w, "%02x ", row[j])
			} else {
				fmt.Fprint(w, "   ")
			}
		}
		fmt.Fprint(w, " ")
		for _, c := range row {
			if c >= 0x20 && c < 0x7f {
				fmt.Fprintf(w, "%c", c)
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprintln(w)
	}
}

func dumpAttrs(w io.Writer, b []byte, level int) {
	for len(b) >= attrHeaderLen {
		alen := int(native.Uint16(b[0:2]))
		atype := native.Uint16(b[2:4])
		if alen < attrHeaderLen || alen > len(b) {
			break
		}
		nested := atype&nestedFlag != 0
		typ := atype &^ nestedFlag
		value := b[attrHeaderLen:alen]
		fmt.Fprintf(w, "%sattr type=%d nested=%v len=%d\n", indent(level), typ, nested, len(value))
		if nested {
			dumpAttrs(w, value, level+1)
		} else {
			dumpHex(w, value, level+1)
		}
		adv := align(alen, alignTo)
		if adv > len(b) {
			adv = len(b)
		}
		b = b[adv:]
	}
	if len(b) > 0 {
		fmt.Fprintf(w, "%sLEFTOVER len=%d\n", indent(level), len(b))
		dumpHex(w, b, level+1)
	}
}
