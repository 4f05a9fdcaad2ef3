package nl

import "syscall"

// errnoFor turns a raw numeric error code, as carried in a netlink ERROR
// record or returned negated from a syscall, into a syscall.Errno so
// callers get familiar Is()/messages (e.g. errors.Is(err, syscall.ENOENT)).
func errnoFor(code int) error {
	if code < 0 {
		code = -code
	}
	if code == 0 {
		return nil
	}
	return syscall.Errno(code)
}
