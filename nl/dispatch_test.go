package nl_test

import (
	"encoding/binary"
	"testing"

	"github.com/netlinkclient/nlcore/nl"
)

// record builds one raw wire record (header + 4-octet-aligned payload),
// assuming a little-endian host, which is true of every machine this
// suite runs on in practice.
func record(msgType, flags uint16, seq, portID uint32, payload []byte) []byte {
	m := nl.AllocateSimple(msgType, flags)
	m.SetSeq(seq)
	m.SetPortID(portID)
	if len(payload) > 0 {
		if err := m.Append(payload, 4); err != nil {
			panic(err)
		}
	}
	return m.Buffer()
}

// errorRecord builds an ERROR record carrying code and a copy of orig as
// the "offending original header".
func errorRecord(seq, portID uint32, code int32, orig nl.Header) []byte {
	payload := make([]byte, 4+16)
	binary.LittleEndian.PutUint32(payload[0:4], uint32(code))
	binary.LittleEndian.PutUint32(payload[4:8], orig.Len)
	binary.LittleEndian.PutUint16(payload[8:10], orig.Type)
	binary.LittleEndian.PutUint16(payload[10:12], orig.Flags)
	binary.LittleEndian.PutUint32(payload[12:16], orig.Seq)
	binary.LittleEndian.PutUint32(payload[16:20], orig.PortID)
	return record(nl.ERROR, 0, seq, portID, payload)
}

// feed installs a receive override on cb that returns one queued
// datagram per call, then nil/nil/nil/nil (would-block) forever after.
func feed(cb *nl.Set, datagrams ...[]byte) {
	i := 0
	cb.OverrideReceive(func(s *nl.Socket) ([]byte, nl.Address, *nl.Credentials, error) {
		if i >= len(datagrams) {
			return nil, nl.Address{}, nil, nil
		}
		d := datagrams[i]
		i++
		return d, nl.Address{PortID: 0}, nil, nil
	})
}

// Scenario 1: empty-request ACK. A single ERROR record with code 0
// (pure ack) for a request whose sequence matches the socket's
// expectation. Dispatch invokes MSG_IN then ACK and returns 0.
func TestDispatchEmptyRequestAck(t *testing.T) {
	sock := nl.NewSocket()
	cb := nl.Allocate(nl.Default)
	feed(cb, errorRecord(0, 0, 0, nl.Header{}))

	n, err := nl.DispatchReporting(sock, cb)
	if err != nil {
		t.Fatalf("DispatchReporting: %v", err)
	}
	if n != 0 {
		t.Errorf("DispatchReporting() = %d, want 0", n)
	}
}

// Scenario 2: multipart dump. Three VALID records followed by a DONE,
// all MULTI-flagged. DispatchReporting returns 3 (the VALID count, not
// counting the terminating DONE).
func TestDispatchMultipartDump(t *testing.T) {
	sock := nl.NewSocket()
	cb := nl.Allocate(nl.Default)

	datagram := append(append(append(
		record(100, nl.MULTI, 0, 0, []byte{1, 2, 3, 4}),
		record(100, nl.MULTI, 0, 0, []byte{5, 6, 7, 8})...),
		record(100, nl.MULTI, 0, 0, []byte{9, 10, 11, 12})...),
		record(nl.DONE, nl.MULTI, 0, 0, nil)...)
	feed(cb, datagram)

	n, err := nl.DispatchReporting(sock, cb)
	if err != nil {
		t.Fatalf("DispatchReporting: %v", err)
	}
	if n != 3 {
		t.Errorf("DispatchReporting() = %d, want 3", n)
	}
}

// Scenario 3: error response. An ERROR record with a nonzero code and
// no custom error hook: dispatch returns the translated error.
func TestDispatchErrorResponse(t *testing.T) {
	sock := nl.NewSocket()
	cb := nl.Allocate(nl.Default)
	feed(cb, errorRecord(0, 0, -17, nl.Header{}))

	_, err := nl.DispatchReporting(sock, cb)
	if err == nil {
		t.Fatal("DispatchReporting should return the translated error")
	}
	kind, ok := nl.KindOf(err)
	if !ok || kind != nl.ErrPlatform {
		t.Errorf("err kind = %v, %v, want ErrPlatform", kind, ok)
	}
}

// Scenario 4: sequence mismatch. The peer's reply carries a sequence
// that doesn't match what the socket expects, and no INVALID hook is
// installed: dispatch returns ErrSequenceMismatch without delivering
// the record to VALID.
func TestDispatchSequenceMismatch(t *testing.T) {
	sock := nl.NewSocket()
	sock.SetExpectedSeq(42)
	cb := nl.Allocate(nl.Default)
	feed(cb, record(100, 0, 43, 0, []byte{1, 2, 3, 4}))

	n, err := nl.DispatchReporting(sock, cb)
	if err == nil {
		t.Fatal("DispatchReporting should fail on sequence mismatch")
	}
	if n != 0 {
		t.Errorf("DispatchReporting() = %d, want 0 on error", n)
	}
	kind, ok := nl.KindOf(err)
	if !ok || kind != nl.ErrSequenceMismatch {
		t.Errorf("err kind = %v, %v, want ErrSequenceMismatch", kind, ok)
	}
}

// Scenario 5: dump interrupted. One MULTI record carries DUMP_INTR with
// no DUMP_INTR hook installed, followed by DONE. Dispatch drains through
// DONE and then returns ErrDumpInterrupted.
func TestDispatchDumpInterrupted(t *testing.T) {
	sock := nl.NewSocket()
	cb := nl.Allocate(nl.Default)

	datagram := append(
		record(100, nl.MULTI|nl.DUMP_INTR, 0, 0, []byte{1, 2, 3, 4}),
		record(nl.DONE, nl.MULTI, 0, 0, nil)...)
	feed(cb, datagram)

	_, err := nl.DispatchReporting(sock, cb)
	kind, ok := nl.KindOf(err)
	if !ok || kind != nl.ErrDumpInterrupted {
		t.Errorf("err = %v (kind=%v, ok=%v), want ErrDumpInterrupted", err, kind, ok)
	}
}

// Turning on the Verbose (or Debug) personality must not silently
// disable the engine's own sequence verification or dump-interrupt
// latching: both scenarios above must still fail the same way.
func TestVerbosePersonalityKeepsSeqCheckAndDumpIntr(t *testing.T) {
	t.Run("seq mismatch", func(t *testing.T) {
		sock := nl.NewSocket()
		sock.SetExpectedSeq(42)
		cb := nl.Allocate(nl.Verbose)
		feed(cb, record(100, 0, 43, 0, []byte{1, 2, 3, 4}))

		_, err := nl.DispatchReporting(sock, cb)
		kind, ok := nl.KindOf(err)
		if !ok || kind != nl.ErrSequenceMismatch {
			t.Errorf("err kind = %v, %v, want ErrSequenceMismatch", kind, ok)
		}
	})

	t.Run("dump interrupted", func(t *testing.T) {
		sock := nl.NewSocket()
		cb := nl.Allocate(nl.Verbose)

		datagram := append(
			record(100, nl.MULTI|nl.DUMP_INTR, 0, 0, []byte{1, 2, 3, 4}),
			record(nl.DONE, nl.MULTI, 0, 0, nil)...)
		feed(cb, datagram)

		_, err := nl.DispatchReporting(sock, cb)
		kind, ok := nl.KindOf(err)
		if !ok || kind != nl.ErrDumpInterrupted {
			t.Errorf("err = %v (kind=%v, ok=%v), want ErrDumpInterrupted", err, kind, ok)
		}
	})
}

func TestWaitForAckStopsOnFirstAck(t *testing.T) {
	sock := nl.NewSocket()
	feed(sock.Callbacks(), errorRecord(0, 0, 0, nl.Header{}))

	if err := nl.WaitForAck(sock); err != nil {
		t.Fatalf("WaitForAck: %v", err)
	}
}

func TestWaitForAckSurfacesError(t *testing.T) {
	sock := nl.NewSocket()
	feed(sock.Callbacks(), errorRecord(0, 0, -1, nl.Header{}))

	if err := nl.WaitForAck(sock); err == nil {
		t.Fatal("WaitForAck should surface a nonzero error code")
	}
}

func TestPickupDecodesFirstValidRecord(t *testing.T) {
	sock := nl.NewSocket()
	feed(sock.Callbacks(), record(100, 0, 0, 0, []byte{1, 2, 3, 4}))

	result, err := nl.Pickup(sock, func(msg *nl.Message) (interface{}, error) {
		return msg.Payload()[0], nil
	})
	if err != nil {
		t.Fatalf("Pickup: %v", err)
	}
	if result != byte(1) {
		t.Errorf("Pickup() = %v, want 1", result)
	}
}

func TestPickupReturnsNilWhenNothingValidSeen(t *testing.T) {
	sock := nl.NewSocket()
	feed(sock.Callbacks(), errorRecord(0, 0, 0, nl.Header{}))

	result, err := nl.Pickup(sock, func(msg *nl.Message) (interface{}, error) {
		return "should not be called", nil
	})
	if err != nil {
		t.Fatalf("Pickup: %v", err)
	}
	if result != nil {
		t.Errorf("Pickup() = %v, want nil", result)
	}
}
