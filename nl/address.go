package nl

// Address identifies one endpoint of a netlink socket: the kernel-
// assigned port id plus the multicast group bitmask (spec.md glossary,
// "Port id").
type Address struct {
	PortID uint32
	Groups uint32
}

// Credentials carries the ancillary SCM_CREDENTIALS payload optionally
// attached to a message. Presence is tracked separately (on the message,
// via hasCreds) rather than via a nullable pointer, per spec.md §9's
// design note on credentials optionality.
type Credentials struct {
	PID int32
	UID uint32
	GID uint32
}
