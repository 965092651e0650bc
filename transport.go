package mcp

// Transport is the framing boundary between the dispatcher and the wire. It
// is intentionally narrow: the dispatcher never knows whether it is talking
// to a persistent stdio pipe or a single buffered HTTP request.
type Transport interface {
	// ReadRequest blocks for the next request frame. ok is false on a clean
	// end of input (EOF on stdio, or every frame of an HTTP body already
	// consumed); err is non-nil only on an actual I/O or framing failure. A
	// framing failure is reported with ok=true (a frame was consumed and the
	// caller may keep reading), an I/O failure with ok=false.
	ReadRequest() (Message, bool, error)

	// SendResponse writes the response to a request previously returned by
	// ReadRequest.
	SendResponse(Message) error

	// SendNotification writes a server-initiated notification, which may
	// happen at any point during a tool's Execute.
	SendNotification(Message) error

	// Finalize signals that no further frames will be produced for the
	// current logical exchange. Both implementations are no-ops: stdio has
	// already written every frame, and HTTP's accessors read its buffered
	// state directly once dispatch is done.
	Finalize() error
}
