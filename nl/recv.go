package nl

// RawReceive returns one datagram's worth of bytes and its source
// address (spec.md §4.4.3). A nil slice with a nil error means EOF or
// would-block (the "0" return of the spec); a nil slice with a non-nil
// error is a translated failure. On any non-positive return no buffer
// is retained by the callee (Go's GC reclaims transient allocations;
// there is nothing for the caller to explicitly release).
func RawReceive(sock *Socket) ([]byte, Address, *Credentials, error) {
	var (
		data  []byte
		from  Address
		creds *Credentials
	)
	err := observeSyscall("recvmsg", func() error {
		var rerr error
		data, from, creds, rerr = rawReceive(sock)
		return rerr
	})
	if err != nil {
		return nil, Address{}, nil, err
	}
	return data, from, creds, nil
}
