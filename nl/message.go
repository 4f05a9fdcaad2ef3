// Package nl implements a datagram-oriented, kernel-mediated control
// protocol transport: message framing, a reference-counted callback
// hook set, a socket endpoint, and the synchronous send/receive/dispatch
// engine layered on them. It hides sequence tracking, acknowledgement,
// credentials, and interrupted multipart dumps behind a small set of
// caller-facing operations.
package nl

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned by Convert and by attribute parsing when the
// input is shorter than its own declared layout.
var ErrTruncated = errors.New("netlink: message truncated")

// maxReserve bounds a single Reserve call. There's no way to provoke a
// real allocator OOM from Go without crashing the process outright, so
// this stands in for the "allocation fails" path spec.md requires:
// anything past a single record's sane size is treated as a caller bug
// or corrupt length field, not a legitimate reservation.
const maxReserve = 1 << 24 // 16 MiB

// Header is the fixed 16-octet on-wire record header (spec.md §3),
// native byte order.
type Header struct {
	Len    uint32
	Type   uint16
	Flags  uint16
	Seq    uint32
	PortID uint32
}

// Message is an owning container for one wire-format datagram: a
// growable buffer whose first 16 bytes are the header, plus side
// metadata not carried on the wire (spec.md §3 "Message Object
// invariants").
type Message struct {
	buf      []byte
	protocol int // -1 = unbound
	src, dst Address
	hasDst   bool
	creds    Credentials
	hasCreds bool
	// createFlags records flags present at construction time, separate
	// from the header's own Flags field (which is wire state and may be
	// rewritten by Complete).
	createFlags uint32
}

// AllocateEmpty returns a new message with just the header, zero
// initialized, and no payload. Protocol is unbound (-1).
func AllocateEmpty() *Message {
	m := &Message{buf: make([]byte, headerLen), protocol: -1}
	m.setHeader(Header{Len: uint32(headerLen)})
	return m
}

// AllocateSimple returns a new empty message with type and flags
// stamped into the header.
func AllocateSimple(msgType uint16, flags uint16) *Message {
	m := AllocateEmpty()
	h := m.Header()
	h.Type = msgType
	h.Flags = flags
	m.setHeader(h)
	return m
}

// Inherit copies type, flags, sequence, and port id from template into a
// fresh empty message; payload starts empty.
func Inherit(template Header) *Message {
	m := AllocateEmpty()
	h := m.Header()
	h.Type = template.Type
	h.Flags = template.Flags
	h.Seq = template.Seq
	h.PortID = template.PortID
	m.setHeader(h)
	return m
}

// Convert copies an existing on-wire record into a fresh owned buffer.
// The number of bytes copied is taken from the record's own Len field,
// not from len(raw); raw must contain at least that many bytes.
func Convert(raw []byte) (*Message, error) {
	if len(raw) < headerLen {
		return nil, ErrTruncated
	}
	declared := int(native.Uint32(raw[0:4]))
	if declared < headerLen || declared > len(raw) {
		return nil, ErrTruncated
	}
	buf := make([]byte, declared)
	copy(buf, raw[:declared])
	return &Message{buf: buf, protocol: -1}, nil
}

// header decodes the 16-byte header from the front of the buffer.
func (m *Message) header() Header {
	b := m.buf
	return Header{
		Len:    native.Uint32(b[0:4]),
		Type:   native.Uint16(b[4:6]),
		Flags:  native.Uint16(b[6:8]),
		Seq:    native.Uint32(b[8:12]),
		PortID: native.Uint32(b[12:16]),
	}
}

// setHeader encodes h into the front of the buffer.
func (m *Message) setHeader(h Header) {
	b := m.buf
	native.PutUint32(b[0:4], h.Len)
	native.PutUint16(b[4:6], h.Type)
	native.PutUint16(b[6:8], h.Flags)
	native.PutUint32(b[8:12], h.Seq)
	native.PutUint32(b[12:16], h.PortID)
}

// Header returns a copy of the message's current header.
func (m *Message) Header() Header { return m.header() }

// Type, Flags, Seq, PortID are convenience single-field accessors.
func (m *Message) Type() uint16    { return m.header().Type }
func (m *Message) Flags() uint16   { return m.header().Flags }
func (m *Message) Seq() uint32     { return m.header().Seq }
func (m *Message) PortID() uint32  { return m.header().PortID }
func (m *Message) WireLen() uint32 { return m.header().Len }

// SetType, SetFlags, SetSeq, SetPortID mutate a single header field in
// place; they never reallocate the buffer.
func (m *Message) SetType(t uint16)      { h := m.header(); h.Type = t; m.setHeader(h) }
func (m *Message) SetFlags(f uint16)     { h := m.header(); h.Flags = f; m.setHeader(h) }
func (m *Message) SetSeq(seq uint32)     { h := m.header(); h.Seq = seq; m.setHeader(h) }
func (m *Message) SetPortID(pid uint32)  { h := m.header(); h.PortID = pid; m.setHeader(h) }
func (m *Message) AddFlags(f uint16)     { h := m.header(); h.Flags |= f; m.setHeader(h) }

// Protocol returns the bound protocol id, or -1 if unbound.
func (m *Message) Protocol() int      { return m.protocol }
func (m *Message) SetProtocol(p int)   { m.protocol = p }

// Src/SetSrc and Dst/SetDst are the source/destination address side
// metadata (spec.md §3's "source address, destination address").
func (m *Message) Src() Address    { return m.src }
func (m *Message) SetSrc(a Address) { m.src = a }
func (m *Message) Dst() (Address, bool) { return m.dst, m.hasDst }
func (m *Message) SetDst(a Address)     { m.dst = a; m.hasDst = true }

// Credentials returns the optional ancillary credentials and whether
// they are present.
func (m *Message) Credentials() (Credentials, bool) { return m.creds, m.hasCreds }
func (m *Message) SetCredentials(c Credentials)      { m.creds = c; m.hasCreds = true }
func (m *Message) ClearCredentials()                 { m.hasCreds = false }

// Buffer returns the full owned buffer (header + payload + trailing
// pad). Callers must treat it as a borrow: any call that may grow the
// message (Reserve/Append/Put) invalidates previously returned slices.
func (m *Message) Buffer() []byte { return m.buf }

// Payload returns the bytes after the header.
func (m *Message) Payload() []byte {
	n := int(m.header().Len)
	if n > len(m.buf) {
		n = len(m.buf)
	}
	if n < headerLen {
		return nil
	}
	return m.buf[headerLen:n]
}

// Reserve grows the buffer by n bytes rounded up to pad (pad=0 means no
// rounding), zeroes the padding bytes, increments the header's Len
// field by the aligned amount, and returns the newly reserved region
// (length == aligned(n, pad)); the first n bytes of it are
// caller-writable payload, the remainder is the zeroed alignment pad.
//
// Any slice previously returned by Buffer, Payload, or Reserve is
// invalidated by this call if the underlying array is reallocated;
// callers must re-fetch.
func (m *Message) Reserve(n, pad int) ([]byte, error) {
	if n < 0 || n > maxReserve {
		return nil, NewError(ErrOutOfMemory, fmt.Errorf("invalid reserve size %d", n))
	}
	alignedLen := align(n, pad)
	old := len(m.buf)
	if alignedLen > maxReserve {
		return nil, NewError(ErrOutOfMemory, fmt.Errorf("invalid reserve size %d", alignedLen))
	}
	m.buf = append(m.buf, make([]byte, alignedLen)...)
	h := m.header()
	h.Len = uint32(old + alignedLen)
	m.setHeader(h)
	return m.buf[old : old+alignedLen], nil
}

// Append reserves len(data) bytes (rounded to pad) and copies data into
// the front of the reserved region.
func (m *Message) Append(data []byte, pad int) error {
	tail, err := m.Reserve(len(data), pad)
	if err != nil {
		return err
	}
	copy(tail, data)
	return nil
}

// Put overwrites the header's port id, sequence, type, and flags, and,
// if payloadRoom > 0, additionally reserves that much 4-octet-aligned
// payload space, returning the reserved tail (nil if payloadRoom <= 0).
func (m *Message) Put(portID, seq uint32, msgType uint16, payloadRoom int, flags uint16) ([]byte, error) {
	h := m.header()
	h.PortID = portID
	h.Seq = seq
	h.Type = msgType
	h.Flags = flags
	m.setHeader(h)
	if payloadRoom <= 0 {
		return nil, nil
	}
	return m.Reserve(payloadRoom, alignTo)
}

// AttrRegion returns the attribute region of the payload: the bytes after
// a familyHeaderLen-byte family-specific fixed header, rounded up to the
// 4-octet alignment (spec.md §6's "cache-ops lookup by (protocol, type)"
// hook). It returns ErrTruncated if the payload is shorter than that
// header. Core code has no family parser of its own; callers that know
// their family's header size pass it explicitly to AttrRegion or
// DumpAttributesCSV.
func (m *Message) AttrRegion(familyHeaderLen int) ([]byte, error) {
	p := m.Payload()
	off := align(familyHeaderLen, alignTo)
	if off > len(p) {
		return nil, ErrTruncated
	}
	return p[off:], nil
}
