//go:build linux

package nl

import "golang.org/x/sys/unix"

// rawReceive implements spec.md §4.4.3's bounded-retry algorithm: an
// optional peek+truncate sizing probe, EINTR/EWOULDBLOCK absorption,
// ancillary-buffer growth on control truncation, payload-buffer growth
// on data truncation, a forced second pass to do the real read after a
// peek, source-address validation, and SCM_CREDENTIALS extraction.
func rawReceive(sock *Socket) ([]byte, Address, *Credentials, error) {
	bufSize := sock.BufSize()
	if bufSize == 0 {
		bufSize = unix.Getpagesize()
	}
	payload := make([]byte, bufSize)

	oobLen := 0
	var oob []byte
	if sock.PassCred() {
		oobLen = unix.CmsgSpace(unix.SizeofUcred)
		oob = make([]byte, oobLen)
	}

	peeking := sock.Peek()

	for {
		flags := 0
		if peeking {
			flags = unix.MSG_PEEK | unix.MSG_TRUNC
		}

		n, oobn, recvFlags, from, err := unix.Recvmsg(sock.FD(), payload, oob, flags)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EWOULDBLOCK || err == unix.EAGAIN {
			return nil, Address{}, nil, nil
		}
		if err != nil {
			return nil, Address{}, nil, NewError(ErrPlatform, err)
		}

		if oobLen > 0 && recvFlags&unix.MSG_CTRUNC != 0 {
			oobLen *= 2
			oob = make([]byte, oobLen)
			continue
		}

		if recvFlags&unix.MSG_TRUNC != 0 || n > len(payload) {
			payload = make([]byte, n)
			peeking = false
			continue
		}

		if peeking {
			peeking = false
			continue
		}

		nlFrom, ok := from.(*unix.SockaddrNetlink)
		if !ok {
			return nil, Address{}, nil, NewError(ErrNoAddress, nil)
		}
		addr := Address{PortID: nlFrom.Pid, Groups: nlFrom.Groups}

		var creds *Credentials
		if oobn > 0 {
			scms, err := unix.ParseSocketControlMessage(oob[:oobn])
			if err == nil {
				for _, scm := range scms {
					ucred, err := unix.ParseUnixCredentials(&scm)
					if err == nil {
						creds = &Credentials{PID: ucred.Pid, UID: ucred.Uid, GID: ucred.Gid}
					}
				}
			}
		}

		return payload[:n], addr, creds, nil
	}
}
