package wasmnet

import (
	"fmt"
	"net/http"
	"sync"
	"syscall/js"
)

//browserSocket is the Transport backed by the browser's WebSocket object.
// See: https://developer.mozilla.org/en-US/docs/Web/API/WebSocket
type browserSocket struct {
	ws js.Value
	h  Handler

	cleanup     []func()
	releaseOnce sync.Once
}

//platformDialer ignores header, browsers do not allow handshake headers
func platformDialer(_ http.Header) DialFunc {
	return dialBrowser
}

func dialBrowser(url string, protocols []string, h Handler) (_ Transport, err error) {
	defer recoverJSError(&err)

	jsProtocols := make([]any, len(protocols))
	for i, protocol := range protocols {
		jsProtocols[i] = protocol
	}

	bs := &browserSocket{
		ws:      js.Global().Get("WebSocket").New(url, jsProtocols),
		h:       h,
		cleanup: make([]func(), 0, 4),
	}

	//ArrayBuffers can be copied synchronously inside the message callback, Blobs cannot
	if !binaryTypeArrayBuffer.apply(bs.ws) {
		bs.ws.Call("close")
		return nil, fmt.Errorf("WebSocket: %q's binaryType is %q rather than %q", url, binaryTypeOf(bs.ws), binaryTypeArrayBuffer)
	}

	bs.addHandler(bs.handleOpen, "open")
	bs.addHandler(bs.handleMessage, "message")
	bs.addHandler(bs.handleError, "error")
	bs.addHandler(bs.handleClose, "close")
	return bs, nil
}

func (bs *browserSocket) Send(kind MessageKind, payload []byte) (err error) {
	defer recoverJSError(&err)

	if kind == MessageText {
		bs.ws.Call("send", string(payload))
	} else {
		bs.ws.Call("send", jsBytes(payload))
	}
	return nil
}

func (bs *browserSocket) Close(code StatusCode, reason string) (err error) {
	defer recoverJSError(&err)

	bs.ws.Call("close", int(code), reason)
	return nil
}

func (bs *browserSocket) addHandler(handler func(this js.Value, args []js.Value), event string) {
	jsHandler := js.FuncOf(func(this js.Value, args []js.Value) any {
		handler(this, args)
		return nil
	})
	cleanup := func() {
		bs.ws.Call("removeEventListener", event, jsHandler)
		jsHandler.Release()
	}
	bs.ws.Call("addEventListener", event, jsHandler)
	bs.cleanup = append(bs.cleanup, cleanup)
}

//release unregisters every listener, outside of the listener that triggered it
func (bs *browserSocket) release() {
	bs.releaseOnce.Do(func() {
		go func() {
			for _, cleanup := range bs.cleanup {
				cleanup()
			}
		}()
	})
}

func (bs *browserSocket) handleOpen(_ js.Value, _ []js.Value) {
	bs.h.HandleOpen(bs.ws.Get("protocol").String())
}

func (bs *browserSocket) handleMessage(_ js.Value, args []js.Value) {
	data := args[0].Get("data")
	switch {
	case data.Type() == js.TypeString:
		bs.h.HandleMessage(MessageText, []byte(data.String()))

	case data.InstanceOf(arrayBuffer):
		bs.h.HandleMessage(MessageBinary, copyArrayBuffer(data))

	default:
		bs.h.HandleError(decodeError("unsupported message payload of type %s", data.Type()))
	}
}

//handleError receives a plain Event, browsers do not expose any details
func (bs *browserSocket) handleError(_ js.Value, args []js.Value) {
	desc := "WebSocket error"
	if len(args) > 0 {
		if msg := args[0].Get("message"); msg.Type() == js.TypeString {
			desc = msg.String()
		}
	}
	bs.h.HandleError(jsRejection{name: "error", message: desc})
}

func (bs *browserSocket) handleClose(_ js.Value, args []js.Value) {
	ev := args[0]
	bs.h.HandleClose(StatusCode(ev.Get("code").Int()), ev.Get("reason").String(), ev.Get("wasClean").Bool())
	bs.release()
}
