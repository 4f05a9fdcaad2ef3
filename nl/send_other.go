//go:build !linux

package nl

func rawSendTo(sock *Socket, buf []byte, dst Address) (int, error) {
	return 0, NewError(ErrAFNotSupported, nil)
}

func rawSendMsg(sock *Socket, buf []byte, dst Address, creds *Credentials) error {
	return NewError(ErrAFNotSupported, nil)
}
