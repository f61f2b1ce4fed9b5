package wasmnet

import (
	"errors"
	"fmt"
)

var (
	//ErrNotConnected is returned by Send when the connection is not open
	ErrNotConnected = errors.New("WebSocket: Connection is not open")

	//ErrWebsocketClosed is returned by Dial when the connection closes before it opens
	ErrWebsocketClosed = errors.New("WebSocket: Web socket is closed")

	//ErrDecode is wrapped by ErrorEvents describing a malformed message payload
	ErrDecode = errors.New("malformed message payload")

	//ErrTransport is wrapped by errors from the underlying socket or fetch implementation
	ErrTransport = errors.New("transport failure")

	//ErrAborted is returned by Request.Send when its context ends before a response arrives
	ErrAborted = errors.New("fetch: Request aborted by caller")

	//ErrInvalidClose is returned by Close for a status code or reason the browser would reject
	ErrInvalidClose = errors.New("WebSocket: Invalid close code or reason")

	//ErrInvalidURL is returned for addresses that are not ws://, wss://, http:// or https:// URLs
	ErrInvalidURL = errors.New("WebSocket: Invalid address")
)

//decodeError wraps ErrDecode with details
func decodeError(format string, args ...any) error {
	return fmt.Errorf("WebSocket: %s; Details: %w", fmt.Sprintf(format, args...), ErrDecode)
}

//transportError classifies err as a transport failure unless it already is a decode failure
func transportError(err error) error {
	if err == nil {
		err = errors.New("unknown error")
	}
	if errors.Is(err, ErrDecode) || errors.Is(err, ErrTransport) {
		return err
	}
	return fmt.Errorf("WebSocket: %w; Details: %w", ErrTransport, err)
}
