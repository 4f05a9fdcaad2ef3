//go:build !linux

package nl

// Connect is unsupported outside Linux: netlink is a Linux-specific
// kernel facility, mirroring the teacher's netlink_darwin.go stub.
func (s *Socket) Connect(protocol int) error {
	return NewError(ErrAFNotSupported, nil)
}

// Close is idempotent even though Connect can never have succeeded on
// this platform.
func (s *Socket) Close() error {
	s.fd = -1
	s.protocol = 0
	return nil
}
