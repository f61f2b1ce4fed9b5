package wasmnet

//Transport is the platform socket a Conn owns. Send and Close must not wait on the network.
type Transport interface {
	Send(kind MessageKind, payload []byte) error
	Close(code StatusCode, reason string) error
}

//Handler receives the four socket callbacks from a Transport. Implementations of Transport must invoke
// them one at a time, in arrival order, and invoke HandleClose exactly once.
type Handler interface {
	HandleOpen(subprotocol string)
	HandleMessage(kind MessageKind, data []byte)
	HandleError(err error)
	HandleClose(code StatusCode, reason string, wasClean bool)
}

//DialFunc creates a Transport for url and registers h for its callbacks.
// It must return without waiting for the connection to open.
type DialFunc func(url string, protocols []string, h Handler) (Transport, error)
