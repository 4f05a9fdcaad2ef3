package nl

// nestedFlag is the high bit of an attribute's type field, marking the
// attribute's value as itself a nested attribute tree (spec.md §3).
const nestedFlag uint16 = 0x8000

const attrHeaderLen = 4

// Attr is one parsed attribute record: a 16-bit length (inclusive of
// the 4-byte attribute header), a 16-bit type with the nested flag
// split out, and the raw value bytes (unaligned length, i.e. trailing
// pad bytes are not included).
type Attr struct {
	Type   uint16
	Nested bool
	Value  []byte
}

// ParseAttrs walks b as a linear sequence of attribute records, stopping
// when fewer than attrHeaderLen bytes remain. It rejects a record whose
// declared length is shorter than the attribute header or longer than
// the remaining buffer.
func ParseAttrs(b []byte) ([]Attr, error) {
	var attrs []Attr
	for len(b) >= attrHeaderLen {
		alen := int(native.Uint16(b[0:2]))
		atype := native.Uint16(b[2:4])
		if alen < attrHeaderLen || alen > len(b) {
			return attrs, ErrTruncated
		}
		attrs = append(attrs, Attr{
			Type:   atype &^ nestedFlag,
			Nested: atype&nestedFlag != 0,
			Value:  b[attrHeaderLen:alen],
		})
		adv := align(alen, alignTo)
		if adv > len(b) {
			adv = len(b)
		}
		b = b[adv:]
	}
	return attrs, nil
}

// PutAttr appends one attribute record (header + value + alignment pad)
// to the message's payload via Reserve/Append.
func (m *Message) PutAttr(attrType uint16, nested bool, value []byte) error {
	t := attrType
	if nested {
		t |= nestedFlag
	}
	total := attrHeaderLen + len(value)
	tail, err := m.Reserve(total, alignTo)
	if err != nil {
		return err
	}
	native.PutUint16(tail[0:2], uint16(total))
	native.PutUint16(tail[2:4], t)
	copy(tail[attrHeaderLen:total], value)
	return nil
}
