package nl

// recordAction is the inner-loop control-flow result after processing
// one record: either move on to the next record in the buffer, or stop
// the whole dispatch loop cleanly. A genuine failure is reported through
// the separate error return, not through this value.
type recordAction int

const (
	actionNext recordAction = iota
	actionStopLoop
)

type dispatchState struct {
	multipart   bool
	interrupted bool
	nrecv       int
	expectedSeq uint32
}

// DispatchReporting runs the receive/dispatch loop (spec.md §4.4.4)
// using cb until a clean stop, a DONE with no outstanding multipart
// stream, or an error. On success it returns the number of family
// records delivered to the VALID hook (control records such as DONE,
// NOOP, OVERRUN and ACKs are not counted); this is the "useful for
// dumps" variant.
func DispatchReporting(sock *Socket, cb *Set) (int, error) {
	if fn := cb.recvLoopFn; fn != nil {
		return fn(sock, cb)
	}

	st := &dispatchState{expectedSeq: sock.ExpectedSeq()}

	for {
		data, from, creds, err := receiveUsing(sock, cb)
		if err != nil {
			return 0, err
		}
		if len(data) == 0 {
			return 0, nil
		}

		stopped, err := processDatagram(sock, cb, st, data, from, creds)
		if err != nil {
			return 0, err
		}
		if stopped {
			break
		}
		if !st.multipart {
			break
		}
	}

	sock.SetExpectedSeq(st.expectedSeq)
	if st.interrupted {
		return 0, NewError(ErrDumpInterrupted, nil)
	}
	return st.nrecv, nil
}

// Dispatch is DispatchReporting with any positive success collapsed to
// zero, matching spec.md §4.4.4's second public variant.
func Dispatch(sock *Socket, cb *Set) (int, error) {
	_, err := DispatchReporting(sock, cb)
	if err != nil {
		return 0, err
	}
	return 0, nil
}

// DispatchDefault runs DispatchReporting using the socket's own default
// Callback Set.
func DispatchDefault(sock *Socket) (int, error) {
	return DispatchReporting(sock, sock.Callbacks())
}

// receiveUsing dispatches to the Callback Set's receive override if
// installed, else RawReceive (spec.md §4.4.4 "Outer step").
func receiveUsing(sock *Socket, cb *Set) ([]byte, Address, *Credentials, error) {
	if fn := cb.recvFn; fn != nil {
		return fn(sock)
	}
	return RawReceive(sock)
}

// processDatagram walks one receive buffer's worth of concatenated
// records (spec.md §4.4.4 "Inner step"), updating st and invoking hooks
// on cb. It returns stopped=true if a hook cleanly ended the loop.
func processDatagram(sock *Socket, cb *Set, st *dispatchState, data []byte, from Address, creds *Credentials) (bool, error) {
	remaining := data
	for len(remaining) >= headerLen {
		declared := int(native.Uint32(remaining[0:4]))
		if declared < headerLen || declared > len(remaining) {
			break
		}
		record := remaining[:declared]
		adv := align(declared, alignTo)
		if adv > len(remaining) {
			adv = len(remaining)
		}
		remaining = remaining[adv:]

		action, err := processRecord(sock, cb, st, record, from, creds)
		if err != nil {
			return false, err
		}
		if action == actionStopLoop {
			return true, nil
		}
	}
	return false, nil
}

// processRecord is the ten numbered steps of spec.md §4.4.4's inner
// step, for a single wire record.
func processRecord(sock *Socket, cb *Set, st *dispatchState, record []byte, from Address, creds *Credentials) (recordAction, error) {
	// Step 1: wrap the raw record into a Message Object.
	msg, err := Convert(record)
	if err != nil {
		return actionNext, nil
	}
	msg.SetProtocol(sock.Protocol())
	msg.SetSrc(from)
	if creds != nil {
		msg.SetCredentials(*creds)
	}

	// Step 2: MSG_IN.
	disp, err := cb.call(EvMsgIn, msg)
	if err != nil {
		return actionNext, err
	}
	switch disp {
	case Skip:
		return actionNext, nil
	case Stop:
		return actionStopLoop, nil
	}

	h := msg.Header()

	// Step 3: sequence check.
	if cb.HasHook(EvSeqCheck) {
		disp, err := cb.call(EvSeqCheck, msg)
		if err != nil {
			return actionNext, err
		}
		switch disp {
		case Skip:
			return actionNext, nil
		case Stop:
			return actionStopLoop, nil
		}
	} else if sock.AutoAck() && h.Seq != st.expectedSeq {
		if cb.HasHook(EvInvalid) {
			disp, err := cb.call(EvInvalid, msg)
			if err != nil {
				return actionNext, err
			}
			switch disp {
			case Skip:
				return actionNext, nil
			case Stop:
				return actionStopLoop, nil
			}
		} else {
			return actionNext, NewError(ErrSequenceMismatch, nil)
		}
	}

	// Step 4: sequence advance for control-or-multipart-unit records,
	// regardless of MULTI (spec.md §9, first Open Question: preserved
	// verbatim, not "fixed").
	if h.Type == DONE || h.Type == ERROR || h.Type == NOOP || h.Type == OVERRUN {
		st.expectedSeq++
	}

	// Step 5: multipart marker.
	if h.Flags&MULTI != 0 {
		st.multipart = true
	}

	// Step 6: DUMP_INTR.
	if h.Flags&DUMP_INTR != 0 {
		if cb.HasHook(EvDumpIntr) {
			disp, err := cb.call(EvDumpIntr, msg)
			if err != nil {
				return actionNext, err
			}
			switch disp {
			case Skip:
				return actionNext, nil
			case Stop:
				return actionStopLoop, nil
			}
		} else {
			st.interrupted = true
		}
	}

	// Step 7: SEND_ACK.
	if h.Flags&ACK != 0 {
		disp, err := cb.call(EvSendAck, msg)
		if err != nil {
			return actionNext, err
		}
		switch disp {
		case Skip:
			return actionNext, nil
		case Stop:
			return actionStopLoop, nil
		}
	}

	// Step 8: classify by type.
	switch h.Type {
	case DONE:
		st.multipart = false
		recordDispatch(EvFinish)
		disp, err := cb.call(EvFinish, msg)
		if err != nil {
			return actionNext, err
		}
		if disp == Stop {
			return actionStopLoop, nil
		}
	case NOOP:
		recordDispatch(EvSkipped)
		disp, err := cb.call(EvSkipped, msg)
		if err != nil {
			return actionNext, err
		}
		if disp == Stop {
			return actionStopLoop, nil
		}
	case OVERRUN:
		recordDispatch(EvOverrun)
		if !cb.HasHook(EvOverrun) {
			return actionNext, NewError(ErrMessageOverflow, nil)
		}
		disp, err := cb.call(EvOverrun, msg)
		if err != nil {
			return actionNext, err
		}
		if disp == Stop {
			return actionStopLoop, nil
		}
	case ERROR:
		return processErrorRecord(cb, st, msg)
	default:
		recordDispatch(EvValid)
		disp, err := cb.call(EvValid, msg)
		if err != nil {
			return actionNext, err
		}
		st.nrecv++
		if disp == Stop {
			return actionStopLoop, nil
		}
	}

	return actionNext, nil
}

// processErrorRecord implements spec.md §4.4.4 step 8's ERROR branch.
func processErrorRecord(cb *Set, st *dispatchState, msg *Message) (recordAction, error) {
	payload := msg.Payload()
	if len(payload) < 4+errorHeaderLen {
		if !cb.HasHook(EvInvalid) {
			return actionNext, NewError(ErrMessageTruncated, nil)
		}
		disp, err := cb.call(EvInvalid, msg)
		if err != nil {
			return actionNext, err
		}
		if disp == Stop {
			return actionStopLoop, nil
		}
		return actionNext, nil
	}

	code := int32(native.Uint32(payload[0:4]))
	if code == 0 {
		recordDispatch(EvAck)
		disp, err := cb.call(EvAck, msg)
		if err != nil {
			return actionNext, err
		}
		if disp == Stop {
			return actionStopLoop, nil
		}
		return actionNext, nil
	}

	orig := payload[4 : 4+errorHeaderLen]
	rec := &ErrorRecord{
		Code: code,
		Original: Header{
			Len:    native.Uint32(orig[0:4]),
			Type:   native.Uint16(orig[4:6]),
			Flags:  native.Uint16(orig[6:8]),
			Seq:    native.Uint32(orig[8:12]),
			PortID: native.Uint32(orig[12:16]),
		},
	}
	disp, err := cb.callError(msg.Src(), rec)
	if err != nil {
		return actionNext, err
	}
	switch disp {
	case Skip:
		return actionNext, nil
	case Stop:
		return actionNext, translate(int(code))
	default:
		return actionNext, nil
	}
}

// WaitForAck clones the socket's callback set, replaces the ACK hook
// with one that returns Stop, runs the dispatch loop once, and releases
// the clone (spec.md §4.4.5). The result is zero on a clean ACK or the
// translated error from an ERROR record.
func WaitForAck(sock *Socket) error {
	clone := sock.Callbacks().Clone()
	defer clone.Release()
	clone.Set(EvAck, Custom, func(msg *Message, arg interface{}) (Disposition, error) {
		return Stop, nil
	}, nil)

	_, err := DispatchReporting(sock, clone)
	return err
}

// Pickup is a single-object synchronous request pattern layered over
// the dispatch loop (spec.md §4.4.4 "thin pickup variant"): it installs
// a VALID hook that calls decode on the first family record seen and
// captures the result, then dispatches once.
func Pickup(sock *Socket, decode func(*Message) (interface{}, error)) (interface{}, error) {
	clone := sock.Callbacks().Clone()
	defer clone.Release()

	var (
		result  interface{}
		decoded bool
		decErr  error
	)
	clone.Set(EvValid, Custom, func(msg *Message, arg interface{}) (Disposition, error) {
		result, decErr = decode(msg)
		decoded = true
		return Stop, nil
	}, nil)

	if _, err := DispatchReporting(sock, clone); err != nil {
		return nil, err
	}
	if !decoded {
		return nil, nil
	}
	return result, decErr
}
