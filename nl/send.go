package nl

// RawSend writes buf as a single datagram to the socket's configured
// peer address (spec.md §4.4.2).
func RawSend(sock *Socket, buf []byte) (int, error) {
	var n int
	err := observeSyscall("sendto", func() error {
		var sendErr error
		n, sendErr = rawSendTo(sock, buf, sock.Peer())
		return sendErr
	})
	return n, err
}

// Complete mutates msg's header in place before it is ever sent
// (spec.md §4.4.1): resolves the AutoPortID/AutoSeq sentinels against
// the socket, adopts the socket's protocol if msg is unbound, sets
// REQUEST, and sets ACK unless the socket's auto-ack flag is disabled.
// A message whose auto sentinels are already resolved is left
// untouched by those substitutions; re-running Complete on a message
// that still carries a sentinel draws a fresh value each time.
func Complete(sock *Socket, msg *Message) {
	h := msg.Header()
	if h.PortID == AutoPortID {
		h.PortID = sock.Local().PortID
	}
	if h.Seq == AutoSeq {
		h.Seq = sock.nextSequence()
	}
	if msg.Protocol() == -1 {
		msg.SetProtocol(sock.Protocol())
	}
	h.Flags |= REQUEST
	if sock.AutoAck() {
		h.Flags |= ACK
	}
	msg.setHeader(h)
}

// destinationFor resolves the address vector send targets: the
// message's own destination override if it carries one, else the
// socket's configured peer.
func destinationFor(sock *Socket, msg *Message) Address {
	if dst, ok := msg.Dst(); ok {
		return dst
	}
	return sock.Peer()
}

// sendRecordWithHook is "Send with header" from spec.md §4.4.2: invoke
// MSG_OUT, abort unless it returns Proceed, stamp the message's source
// address from the socket's bound address, then emit one datagram to
// dst (attaching creds as ancillary data iff present).
func sendRecordWithHook(sock *Socket, msg *Message, dst Address) error {
	if int(msg.WireLen()) > len(msg.Buffer()) {
		return NewError(ErrMessageTruncated, nil)
	}
	disp, err := sock.Callbacks().call(EvMsgOut, msg)
	if err != nil {
		return err
	}
	if disp != Proceed {
		return dispositionAbort(disp)
	}
	msg.SetSrc(sock.Local())
	creds, hasCreds := msg.Credentials()
	var credsPtr *Credentials
	if hasCreds {
		credsPtr = &creds
	}
	return observeSyscall("sendmsg", func() error {
		return rawSendMsg(sock, msg.Buffer(), dst, credsPtr)
	})
}

// dispositionAbort turns a non-Proceed disposition from the MSG_OUT
// hook into the send's error result, per spec.md §4.4.2 ("unless it
// returns Proceed, abort with its return").
func dispositionAbort(d Disposition) error {
	if d == Proceed {
		return nil
	}
	return ErrSendAborted{Disposition: d}
}

// ErrSendAborted is returned when a MSG_OUT hook declines to let a
// message go out (anything other than Proceed).
type ErrSendAborted struct{ Disposition Disposition }

func (e ErrSendAborted) Error() string {
	return "netlink: send aborted by MSG_OUT hook (" + dispositionName(e.Disposition) + ")"
}

func dispositionName(d Disposition) string {
	switch d {
	case Proceed:
		return "Proceed"
	case Skip:
		return "Skip"
	case Stop:
		return "Stop"
	default:
		return "unknown"
	}
}

// VectorSend is "Vector send" from spec.md §4.4.2: resolve destination
// and credentials, delegate to sendRecordWithHook.
func VectorSend(sock *Socket, msg *Message) error {
	return sendRecordWithHook(sock, msg, destinationFor(sock, msg))
}

// DefaultSend is a single-segment vector send of msg's own buffer.
func DefaultSend(sock *Socket, msg *Message) error {
	return VectorSend(sock, msg)
}

// AutoSend completes msg, then dispatches to the socket's send
// override if one is installed, else DefaultSend.
func AutoSend(sock *Socket, msg *Message) error {
	Complete(sock, msg)
	if fn := sock.Callbacks().sendFn; fn != nil {
		return fn(sock, msg)
	}
	return DefaultSend(sock, msg)
}

// SyncSend performs AutoSend and then, unless auto-ack is disabled,
// waits for the peer's acknowledgement.
func SyncSend(sock *Socket, msg *Message) error {
	if err := AutoSend(sock, msg); err != nil {
		return err
	}
	if !sock.AutoAck() {
		return nil
	}
	return WaitForAck(sock)
}
