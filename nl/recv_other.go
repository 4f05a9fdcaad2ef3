//go:build !linux

package nl

func rawReceive(sock *Socket) ([]byte, Address, *Credentials, error) {
	return nil, Address{}, nil, NewError(ErrAFNotSupported, nil)
}
