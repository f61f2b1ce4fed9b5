package wasmnet

import "fmt"

//Event is one of Connected, Message, ErrorEvent or Closed
type Event interface {
	fmt.Stringer
	event()
}

//Connected is delivered once, when the socket opens
type Connected struct {
	Subprotocol string
}

//Message carries one WebSocket message; Kind is the kind the peer sent
type Message struct {
	Kind MessageKind
	Data []byte
}

//ErrorEvent reports a transport or decoding failure. It does not end the stream.
type ErrorEvent struct {
	Err error
}

//Closed is always the final event of a connection
type Closed struct {
	Code   StatusCode
	Reason string
	Clean  bool
}

func (Connected) event()  {}
func (Message) event()    {}
func (ErrorEvent) event() {}
func (Closed) event()     {}

func (ev Connected) String() string {
	if ev.Subprotocol == "" {
		return "Connected"
	}
	return fmt.Sprintf("Connected{%s}", ev.Subprotocol)
}

func (msg Message) String() string {
	if msg.Kind == MessageText {
		return fmt.Sprintf("Message{Text,%q}", msg.Data)
	}
	return fmt.Sprintf("Message{Binary,%d bytes}", len(msg.Data))
}

//Text returns the payload as a string
func (msg Message) Text() string {
	return string(msg.Data)
}

func (ev ErrorEvent) String() string {
	return fmt.Sprintf("Error{%s}", ev.Description())
}

//Description is the human readable failure text
func (ev ErrorEvent) Description() string {
	if ev.Err == nil {
		return "unknown error"
	}
	return ev.Err.Error()
}

func (ev Closed) String() string {
	return fmt.Sprintf("Closed{%d,%q,%t}", ev.Code, ev.Reason, ev.Clean)
}

//MessageKind is the WebSocket message type
type MessageKind uint8

const (
	MessageText MessageKind = iota + 1
	MessageBinary
)

func (kind MessageKind) String() string {
	switch kind {
	case MessageText:
		return "Text"
	case MessageBinary:
		return "Binary"
	default:
		return fmt.Sprintf("MessageKind(%d)", uint8(kind))
	}
}

//StatusCode is a WebSocket close code.
// See https://developer.mozilla.org/en-US/docs/Web/API/CloseEvent/code
type StatusCode int

const (
	StatusNormalClosure   StatusCode = 1000
	StatusGoingAway       StatusCode = 1001
	StatusProtocolError   StatusCode = 1002
	StatusNoStatusRcvd    StatusCode = 1005
	StatusAbnormalClosure StatusCode = 1006
	StatusInternalError   StatusCode = 1011
)

const maxCloseReasonBytes = 123

//validClose applies the browser's WebSocket.close argument rules
func validClose(code StatusCode, reason string) error {
	if code != StatusNormalClosure && (code < 3000 || code > 4999) {
		return fmt.Errorf("%w; Details: code %d is not 1000 or in 3000-4999", ErrInvalidClose, code)
	}
	if len(reason) > maxCloseReasonBytes {
		return fmt.Errorf("%w; Details: reason is %d bytes, limit is %d", ErrInvalidClose, len(reason), maxCloseReasonBytes)
	}
	return nil
}
