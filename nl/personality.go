package nl

import (
	"fmt"
	"io"
	"os"
)

// verboseSink is the argument type the verbose/debug personalities
// expect as hook arg: separate writers for the "good news" and
// "bad news" streams, matching the teacher's stdout-for-data,
// stderr-for-problems convention (main.go, collector/collector.go).
type verboseSink struct {
	Out io.Writer
	Err io.Writer
}

// DefaultSink is the verboseSink used when Allocate(Verbose)/Allocate(Debug)
// is called without a later Set overriding the arg: stdout/stderr.
var DefaultSink = verboseSink{Out: os.Stdout, Err: os.Stderr}

func builtinArg(p Personality) interface{} {
	switch p {
	case Verbose, Debug:
		return DefaultSink
	default:
		return nil
	}
}

func sinkFor(arg interface{}) verboseSink {
	if v, ok := arg.(verboseSink); ok {
		return v
	}
	return DefaultSink
}

func writerFor(e Event, sink verboseSink) io.Writer {
	switch e {
	case EvInvalid, EvOverrun:
		return sink.Err
	default:
		return sink.Out
	}
}

// summarize writes a one-line human-readable header summary, the
// verbose personality's entire job (spec.md §4.4.6).
func summarize(w io.Writer, event Event, msg *Message) {
	h := msg.Header()
	fmt.Fprintf(w, "nl: event=%s len=%d type=%s flags=%s seq=%d port=%d\n",
		eventName(event), h.Len, typeName(h.Type), flagNames(h.Flags), h.Seq, h.PortID)
}

func eventName(e Event) string {
	switch e {
	case EvValid:
		return "VALID"
	case EvFinish:
		return "FINISH"
	case EvOverrun:
		return "OVERRUN"
	case EvSkipped:
		return "SKIPPED"
	case EvAck:
		return "ACK"
	case EvMsgIn:
		return "MSG_IN"
	case EvMsgOut:
		return "MSG_OUT"
	case EvInvalid:
		return "INVALID"
	case EvSeqCheck:
		return "SEQ_CHECK"
	case EvSendAck:
		return "SEND_ACK"
	case EvDumpIntr:
		return "DUMP_INTR"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// builtinHook returns the printing hook for (e, p), or nil to leave the
// slot unset. EvSeqCheck and EvDumpIntr are always left unset here,
// verbose/debug included: those two slots gate the engine's own
// sequence verification and dump-interrupt latching (dispatch.go's
// "if a hook is installed" checks), and an observability personality
// must not silently disable a transport check just by being turned on
// (libnl's cb_def leaves NL_CB_SEQ_CHECK/NL_CB_DUMP_INTR unset for the
// same reason).
func builtinHook(e Event, p Personality) HookFunc {
	if e == EvSeqCheck || e == EvDumpIntr {
		return nil
	}
	switch p {
	case Verbose:
		return func(msg *Message, arg interface{}) (Disposition, error) {
			sink := sinkFor(arg)
			summarize(writerFor(e, sink), e, msg)
			return defaultAction(e), nil
		}
	case Debug:
		return func(msg *Message, arg interface{}) (Disposition, error) {
			sink := sinkFor(arg)
			w := writerFor(e, sink)
			fmt.Fprintf(w, "[%s] ", TraceTag(msg.Header()))
			summarize(w, e, msg)
			if e == EvMsgIn || e == EvMsgOut {
				msg.Dump(w)
			}
			return defaultAction(e), nil
		}
	default:
		return nil
	}
}

func builtinErrorHook(p Personality) ErrorHookFunc {
	switch p {
	case Verbose, Debug:
		return func(peer Address, rec *ErrorRecord, arg interface{}) (Disposition, error) {
			sink := sinkFor(arg)
			fmt.Fprintf(sink.Err, "nl: ERROR from port %d: code=%d original=type=%s seq=%d\n",
				peer.PortID, rec.Code, typeName(rec.Original.Type), rec.Original.Seq)
			return Stop, nil
		}
	default:
		return nil
	}
}
