//go:build linux

package nl

import "golang.org/x/sys/unix"

func sockaddrFor(a Address) *unix.SockaddrNetlink {
	return &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: a.PortID, Groups: a.Groups}
}

// rawSendTo is the plain, credential-less single-datagram send.
func rawSendTo(sock *Socket, buf []byte, dst Address) (int, error) {
	if err := unix.Sendto(sock.FD(), buf, 0, sockaddrFor(dst)); err != nil {
		return 0, NewError(ErrPlatform, err)
	}
	return len(buf), nil
}

// rawSendMsg sends buf to dst, attaching creds as an SCM_CREDENTIALS
// ancillary control message iff creds is non-nil.
func rawSendMsg(sock *Socket, buf []byte, dst Address, creds *Credentials) error {
	var oob []byte
	if creds != nil {
		oob = unix.UnixCredentials(&unix.Ucred{Pid: creds.PID, Uid: creds.UID, Gid: creds.GID})
	}
	if _, _, err := unix.SendmsgN(sock.FD(), buf, oob, sockaddrFor(dst), 0); err != nil {
		return NewError(ErrPlatform, err)
	}
	return nil
}
