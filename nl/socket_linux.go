//go:build linux

package nl

import "golang.org/x/sys/unix"

// Connect creates a raw datagram netlink endpoint bound to protocol,
// sets close-on-exec, applies the configured (or default) receive
// buffer size, optionally enables SCM_CREDENTIALS, binds, and reads
// back the kernel-assigned port id (spec.md §4.3).
func (s *Socket) Connect(protocol int) error {
	if s.Connected() {
		return NewError(ErrBadSocket, nil)
	}

	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, protocol)
	if err != nil {
		return NewError(ErrPlatform, err)
	}
	closeAndReturn := func(cause error) error {
		unix.Close(fd)
		return cause
	}

	if s.bufSize == 0 {
		s.bufSize = defaultBufSize
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, s.bufSize); err != nil {
		return closeAndReturn(NewError(ErrPlatform, err))
	}
	if s.passcred {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PASSCRED, 1); err != nil {
			return closeAndReturn(NewError(ErrPlatform, err))
		}
	}

	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: 0, Groups: s.local.Groups}
	if err := unix.Bind(fd, sa); err != nil {
		return closeAndReturn(NewError(ErrPlatform, err))
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		return closeAndReturn(NewError(ErrPlatform, err))
	}
	nlsa, ok := bound.(*unix.SockaddrNetlink)
	if !ok {
		return closeAndReturn(NewError(ErrNoAddress, nil))
	}
	if nlsa.Family != unix.AF_NETLINK {
		return closeAndReturn(NewError(ErrAFNotSupported, nil))
	}

	s.fd = fd
	s.protocol = protocol
	s.local = Address{PortID: nlsa.Pid, Groups: nlsa.Groups}
	s.peer = Address{PortID: 0}
	return nil
}

// Close closes the descriptor if open and is idempotent.
func (s *Socket) Close() error {
	if s.fd == -1 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	s.protocol = 0
	if err != nil {
		return NewError(ErrPlatform, err)
	}
	return nil
}
