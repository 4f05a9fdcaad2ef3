package nl

import (
	"encoding/binary"
	"unsafe"
)

// Wire-format constants (spec.md §3). These numeric values are part of
// the wire contract and match linux/netlink.h exactly.
const (
	headerLen = 16 // 32+16+16+32+32 bits
	alignTo   = 4

	// Control-record types.
	NOOP    = 1 // NLMSG_NOOP
	ERROR   = 2 // NLMSG_ERROR
	DONE    = 3 // NLMSG_DONE
	OVERRUN = 4 // NLMSG_OVERRUN

	// Header flags the engine reads/writes.
	REQUEST   = 0x01 // NLM_F_REQUEST
	MULTI     = 0x02 // NLM_F_MULTI
	ACK       = 0x04 // NLM_F_ACK
	DUMP_INTR = 0x10 // NLM_F_DUMP_INTR

	// DUMP is not interpreted by the engine itself but is the flag
	// callers set on outbound requests to start a multipart dump.
	DUMP = 0x300 // NLM_F_ROOT|NLM_F_MATCH, commonly combined as NLM_F_DUMP

	// AutoPortID / AutoSeq are the reserved sentinel values Complete
	// substitutes with socket-derived values (spec.md §4.4.1 and
	// glossary "Auto sentinels"). 0 is a legitimate port id (the
	// kernel itself) and a legitimate sequence number, so the sentinel
	// is the all-ones value, as in the reference implementation's
	// NL_AUTO_PORT/NL_AUTO_SEQ.
	AutoPortID uint32 = 0xFFFFFFFF
	AutoSeq    uint32 = 0xFFFFFFFF

	// errorHeaderLen is the size of the copy-of-original-header that
	// follows the signed error code in an ERROR record's payload.
	errorHeaderLen = headerLen
)

// native is the host byte order, detected the way every example in this
// pack that touches netlink does it (vishvananda/netlink/nl.NativeEndian,
// referenced from inetdiag/socket-monitor.go and collector/socket-monitor.go):
// probe a known uint16 value rather than assume little-endian.
var native binary.ByteOrder = detectNativeEndian()

func detectNativeEndian() binary.ByteOrder {
	var x uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&x))
	if b[0] == 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// align rounds n up to the given alignment. align(n, 0) returns n
// unchanged, matching the Message Object's Reserve(len, pad) contract
// where pad=0 means no rounding (spec.md §4.1).
func align(n, pad int) int {
	if pad <= 0 {
		return n
	}
	return (n + pad - 1) &^ (pad - 1)
}
