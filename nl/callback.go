package nl

import "sync/atomic"

// Disposition is the three-state (plus error) control-flow result every
// hook returns, per spec.md §4.2 and the §9 design note preferring a
// closed sum type over magic integers.
type Disposition int

const (
	// Proceed continues normal processing.
	Proceed Disposition = iota
	// Skip abandons the current record and resumes the loop.
	Skip
	// Stop terminates the dispatch loop cleanly.
	Stop
)

// HookFunc is the signature of every event hook except the error slot.
// Returning a non-nil error aborts the current operation with that
// error ("negative" in spec.md's C-flavored vocabulary); the returned
// Disposition is only meaningful when err is nil.
type HookFunc func(msg *Message, arg interface{}) (Disposition, error)

// ErrorHookFunc is the signature of the error slot: it additionally
// receives the peer address and the decoded error record. Stop means
// "surface the translated platform error"; Skip means "swallow it".
type ErrorHookFunc func(peer Address, rec *ErrorRecord, arg interface{}) (Disposition, error)

// ErrorRecord is the decoded payload of a non-zero ERROR record: the
// signed error code and a copy of the offending original header
// (spec.md §3).
type ErrorRecord struct {
	Code     int32
	Original Header
}

// Event enumerates the closed set of dispatch-loop events a Callback
// Set can hook (spec.md §4.2's event taxonomy table).
type Event int

const (
	EvValid Event = iota
	EvFinish
	EvOverrun
	EvSkipped
	EvAck
	EvMsgIn
	EvMsgOut
	EvInvalid
	EvSeqCheck
	EvSendAck
	EvDumpIntr
	numEvents
)

// Personality selects which built-in hook table Allocate/Set draws
// from, or Custom to install a caller-supplied function.
type Personality int

const (
	Default Personality = iota
	Verbose
	Debug
	Custom
)

type hookSlot struct {
	fn  HookFunc
	arg interface{}
}

type errHookSlot struct {
	fn  ErrorHookFunc
	arg interface{}
}

// SendFunc is the transport-primitive signature OverrideSend installs.
type SendFunc func(sock *Socket, msg *Message) error

// RecvFunc is the transport-primitive signature OverrideReceive
// installs in place of RawReceive.
type RecvFunc func(sock *Socket) ([]byte, Address, *Credentials, error)

// RecvLoopFunc is the transport-primitive signature
// OverrideReceiveLoop installs in place of the entire dispatch loop.
type RecvLoopFunc func(sock *Socket, cb *Set) (int, error)

// Set is a reference-counted bundle of hook functions keyed by event
// kind (spec.md §4.2). Cloning yields a fresh independent count
// initialised to one with identical slot contents; the socket that
// owns a Set as its default holds exactly one strong reference to it.
type Set struct {
	refCount int32

	hooks   [numEvents]hookSlot
	errHook errHookSlot

	sendFn     SendFunc
	recvFn     RecvFunc
	recvLoopFn RecvLoopFunc
}

// Allocate creates a Set whose every slot is pre-filled from the
// built-in table for the given personality. Reference count starts
// at 1.
func Allocate(p Personality) *Set {
	s := &Set{refCount: 1}
	if p == Custom {
		p = Default
	}
	for e := Event(0); e < numEvents; e++ {
		s.hooks[e] = hookSlot{fn: builtinHook(e, p), arg: builtinArg(p)}
	}
	s.errHook = errHookSlot{fn: builtinErrorHook(p), arg: builtinArg(p)}
	return s
}

// Clone returns a shallow copy of all slots with a fresh reference
// count of 1.
func (s *Set) Clone() *Set {
	c := &Set{refCount: 1}
	c.hooks = s.hooks
	c.errHook = s.errHook
	c.sendFn = s.sendFn
	c.recvFn = s.recvFn
	c.recvLoopFn = s.recvLoopFn
	return c
}

// Retain increments the reference count.
func (s *Set) Retain() { atomic.AddInt32(&s.refCount, 1) }

// Release decrements the reference count, returning true if it reached
// zero (the Set should be treated as freed; Go's GC reclaims it, there
// is nothing else to release explicitly).
func (s *Set) Release() bool {
	return atomic.AddInt32(&s.refCount, -1) == 0
}

// RefCount reports the current reference count.
func (s *Set) RefCount() int32 { return atomic.LoadInt32(&s.refCount) }

// Set installs a hook for one event. For Custom, fn/arg are installed
// directly; otherwise the built-in function for (event, kind) is
// installed and arg is stored alongside it (e.g. the verbose
// personality's sink, a copy of DefaultSink with its writers replaced;
// the built-in printing hooks use DefaultSink for an arg of any other
// type).
func (s *Set) Set(event Event, kind Personality, fn HookFunc, arg interface{}) {
	if kind == Custom {
		s.hooks[event] = hookSlot{fn: fn, arg: arg}
		return
	}
	s.hooks[event] = hookSlot{fn: builtinHook(event, kind), arg: arg}
}

// SetAll applies Set to every event.
func (s *Set) SetAll(kind Personality, fn HookFunc, arg interface{}) {
	for e := Event(0); e < numEvents; e++ {
		s.Set(e, kind, fn, arg)
	}
}

// SetError installs the error slot, with the same Custom/built-in
// contract as Set.
func (s *Set) SetError(kind Personality, fn ErrorHookFunc, arg interface{}) {
	if kind == Custom {
		s.errHook = errHookSlot{fn: fn, arg: arg}
		return
	}
	s.errHook = errHookSlot{fn: builtinErrorHook(kind), arg: arg}
}

// OverrideSend installs a replacement for the default send primitive.
func (s *Set) OverrideSend(fn SendFunc) { s.sendFn = fn }

// OverrideReceive installs a replacement for RawReceive.
func (s *Set) OverrideReceive(fn RecvFunc) { s.recvFn = fn }

// OverrideReceiveLoop installs a replacement for the whole dispatch
// loop.
func (s *Set) OverrideReceiveLoop(fn RecvLoopFunc) { s.recvLoopFn = fn }

// HasHook reports whether a custom or personality hook is installed for
// event (as opposed to the slot being empty and relying on the
// documented default action).
func (s *Set) HasHook(event Event) bool { return s.hooks[event].fn != nil }

// call invokes the hook for event, or applies the documented default
// action if the slot is empty.
func (s *Set) call(event Event, msg *Message) (Disposition, error) {
	slot := s.hooks[event]
	if slot.fn == nil {
		return defaultAction(event), nil
	}
	return slot.fn(msg, slot.arg)
}

// callError invokes the error hook, or Stop (surface the translated
// error) if unset.
func (s *Set) callError(peer Address, rec *ErrorRecord) (Disposition, error) {
	if s.errHook.fn == nil {
		return Stop, nil
	}
	return s.errHook.fn(peer, rec, s.errHook.arg)
}

// defaultAction is the documented default disposition for each event
// when its slot is unset (spec.md §4.2 table).
func defaultAction(e Event) Disposition {
	switch e {
	case EvValid, EvMsgIn, EvMsgOut, EvSeqCheck, EvSendAck:
		return Proceed
	case EvSkipped:
		return Skip
	case EvFinish, EvOverrun, EvAck, EvInvalid:
		return Stop
	case EvDumpIntr:
		// Never actually consulted: dispatch.go special-cases an unset
		// DUMP_INTR hook (latch `interrupted`, keep reading) rather than
		// running it through a Proceed/Skip/Stop disposition.
		return Proceed
	default:
		return Proceed
	}
}
