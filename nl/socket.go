package nl

import (
	"sync/atomic"
)

// defaultBufSize is applied when no buffer size has been configured
// before Connect (spec.md §4.3, "apply the platform default").
const defaultBufSize = 32 * 1024

// Socket is the kernel-facing endpoint: descriptor, local/peer
// addresses, buffer sizing, sequence counters, behavioural flags, and a
// default Callback Set (spec.md §4.3).
type Socket struct {
	fd       int
	protocol int

	local Address
	peer  Address

	bufSize int

	passcred bool
	peek     bool
	autoAck  bool

	nextSeq     uint32 // next sequence to send; wraps
	expectedSeq uint32 // next expected receive sequence; wraps

	cb *Set
}

// NewSocket returns a closed Socket with default behavioural flags
// (auto-ack enabled) and a fresh default Callback Set.
func NewSocket() *Socket {
	return &Socket{
		fd:      -1,
		autoAck: true,
		cb:      Allocate(Default),
	}
}

// FD returns the kernel file descriptor, or -1 if closed.
func (s *Socket) FD() int { return s.fd }

// Protocol returns the bound protocol id.
func (s *Socket) Protocol() int { return s.protocol }

// Connected reports whether the socket currently owns an open
// descriptor.
func (s *Socket) Connected() bool { return s.fd != -1 }

// BufSize/SetBufSize control the configured receive buffer size. Must
// be set before Connect to take effect (spec.md §4.3).
func (s *Socket) BufSize() int     { return s.bufSize }
func (s *Socket) SetBufSize(n int) { s.bufSize = n }

// PassCred/SetPassCred toggle whether SCM_CREDENTIALS ancillary data is
// requested on receive.
func (s *Socket) PassCred() bool     { return s.passcred }
func (s *Socket) SetPassCred(b bool) { s.passcred = b }

// Peek/SetPeek toggle the peek+truncate sizing probe on raw receive.
func (s *Socket) Peek() bool     { return s.peek }
func (s *Socket) SetPeek(b bool) { s.peek = b }

// AutoAck/SetAutoAck toggle whether Complete sets the ACK flag and
// SyncSend waits for an acknowledgement.
func (s *Socket) AutoAck() bool     { return s.autoAck }
func (s *Socket) SetAutoAck(b bool) { s.autoAck = b }

// Local returns the socket's bound local address.
func (s *Socket) Local() Address { return s.local }

// Peer returns the socket's configured peer (destination) address.
func (s *Socket) Peer() Address      { return s.peer }
func (s *Socket) SetPeer(a Address)  { s.peer = a }

// Callbacks returns the socket's default Callback Set.
func (s *Socket) Callbacks() *Set { return s.cb }

// SetCallbacks replaces the socket's default Callback Set, releasing
// the previous one and retaining the new one.
func (s *Socket) SetCallbacks(cb *Set) {
	if s.cb != nil {
		s.cb.Release()
	}
	cb.Retain()
	s.cb = cb
}

// nextSequence returns the next sequence to send and post-increments
// the counter (wraps on overflow, per spec.md §3).
func (s *Socket) nextSequence() uint32 {
	return atomic.AddUint32(&s.nextSeq, 1) - 1
}

// ExpectedSeq/SetExpectedSeq expose the next-expected-receive counter
// the dispatch loop consults for sequence checking.
func (s *Socket) ExpectedSeq() uint32     { return atomic.LoadUint32(&s.expectedSeq) }
func (s *Socket) SetExpectedSeq(v uint32) { atomic.StoreUint32(&s.expectedSeq, v) }
