package nl

import (
	"errors"
	"fmt"
)

// ErrorKind identifies one of the fixed error categories the engine can
// surface at its boundary (spec.md §6).
type ErrorKind int

// The fixed error kinds the transport engine can return.
const (
	// ErrOutOfMemory is returned when allocation or buffer growth fails.
	ErrOutOfMemory ErrorKind = iota + 1
	// ErrBadSocket is returned by Connect on an already-connected socket.
	ErrBadSocket
	// ErrNoAddress is returned when the kernel hands back a malformed or
	// unexpected bind address.
	ErrNoAddress
	// ErrAFNotSupported is returned when the kernel reports an address
	// family other than netlink for a bound socket.
	ErrAFNotSupported
	// ErrSequenceMismatch is returned when a record's sequence does not
	// match the expected value and no INVALID hook overrides the default.
	ErrSequenceMismatch
	// ErrMessageTruncated is returned when a record or parse target is
	// shorter than its declared length.
	ErrMessageTruncated
	// ErrMessageOverflow is returned when the kernel reports an OVERRUN
	// and no hook overrides the default action.
	ErrMessageOverflow
	// ErrDumpInterrupted is returned when a DUMP_INTR record was seen and
	// no hook handled it.
	ErrDumpInterrupted
	// ErrPlatform is the passthrough bucket for translated platform
	// errors (syscall errno values).
	ErrPlatform
)

var kindText = map[ErrorKind]string{
	ErrOutOfMemory:      "out of memory",
	ErrBadSocket:        "socket already connected",
	ErrNoAddress:        "unexpected kernel address",
	ErrAFNotSupported:   "address family not supported",
	ErrSequenceMismatch: "sequence mismatch",
	ErrMessageTruncated: "message truncated",
	ErrMessageOverflow:  "message overflow (data lost)",
	ErrDumpInterrupted:  "dump interrupted",
	ErrPlatform:         "platform error",
}

func (k ErrorKind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error type returned at the engine boundary. It pairs one
// of the fixed ErrorKind values with an optional wrapped platform error
// (e.g. a syscall.Errno) and, for ErrPlatform, the translated numeric
// code the original ERROR record carried.
type Error struct {
	Kind ErrorKind
	// Code is the original platform error number for ErrPlatform, or 0.
	Code int
	// Err is the underlying error, if any (e.g. a syscall errno).
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps kind/err into an *Error.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the ErrorKind of err, if err is (or wraps) an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Translator maps a platform error number (a negated netlink ERROR
// record code, or a syscall errno) to an application-level error. The
// default translator below just wraps it as ErrPlatform; callers may
// install their own via SetTranslator to match spec.md §6's "pluggable
// mapping from platform error numbers to the library's error kinds".
type Translator func(code int) error

var defaultTranslator Translator = func(code int) error {
	return &Error{Kind: ErrPlatform, Code: code, Err: errnoFor(code)}
}

var activeTranslator = defaultTranslator

// SetTranslator installs a custom platform error translator. Passing nil
// restores the default.
func SetTranslator(t Translator) {
	if t == nil {
		t = defaultTranslator
	}
	activeTranslator = t
}

// translate converts a raw platform error code (always negative when it
// comes off the wire, per spec.md §3) into an application error.
func translate(code int) error {
	return activeTranslator(code)
}
