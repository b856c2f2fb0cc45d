package server

// ConnState is the lifecycle stage of a connection. A connection only moves
// forward: Decoding, then Responding, then Closed. A decoding failure goes
// straight to Closed.
type ConnState int32

const (
	// StateDecoding: reading the request line and header block.
	StateDecoding ConnState = iota
	// StateResponding: the request decoded and the response is being written.
	StateResponding
	// StateClosed: the connection is closed. Terminal.
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateDecoding:
		return "decoding"
	case StateResponding:
		return "responding"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
