//go:build !js

package wasmnet

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

const (
	nativeReadLimit    = 32 << 20
	nativeWriteTimeout = time.Second * 10
)

var errClosedBeforeOpen = errors.New("WebSocket is closed before the connection is established")

//netSocket is the Transport used outside of the browser. A single goroutine dials and then reads, and
// it is the only caller of the Handler so callbacks are serialized in arrival order.
type netSocket struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	url       string
	protocols []string
	header    http.Header
	h         Handler

	mu          sync.Mutex
	conn        *websocket.Conn
	closing     bool
	closeCode   StatusCode
	closeReason string
	closeDone   chan error
}

func platformDialer(header http.Header) DialFunc {
	return func(url string, protocols []string, h Handler) (Transport, error) {
		ctx, cancel := context.WithCancel(context.Background())
		ns := &netSocket{
			ctx:       ctx,
			ctxCancel: cancel,
			url:       url,
			protocols: protocols,
			header:    header,
			h:         h,
			closeDone: make(chan error, 1),
		}
		go ns.run()
		return ns, nil
	}
}

func (ns *netSocket) run() {
	defer ns.ctxCancel()

	conn, _, err := websocket.Dial(ns.ctx, ns.url, &websocket.DialOptions{
		HTTPHeader:   ns.header,
		Subprotocols: ns.protocols,
	})

	ns.mu.Lock()
	closing, code, reason := ns.closing, ns.closeCode, ns.closeReason
	if err == nil && !closing {
		ns.conn = conn
	}
	ns.mu.Unlock()

	//Closed while connecting: behave as the browser does and fail the connection
	if closing {
		if err == nil {
			conn.Close(websocket.StatusCode(code), reason)
		}
		ns.h.HandleError(errClosedBeforeOpen)
		ns.h.HandleClose(StatusAbnormalClosure, "", false)
		return
	}
	if err != nil {
		ns.h.HandleError(err)
		ns.h.HandleClose(StatusAbnormalClosure, "", false)
		return
	}

	conn.SetReadLimit(nativeReadLimit)
	ns.h.HandleOpen(conn.Subprotocol())
	for {
		typ, data, err := conn.Read(context.Background())
		if err != nil {
			ns.finish(err)
			return
		}

		kind := MessageBinary
		if typ == websocket.MessageText {
			kind = MessageText
		}
		ns.h.HandleMessage(kind, data)
	}
}

//finish reports the end of the connection given the error that stopped reading
func (ns *netSocket) finish(readErr error) {
	var closeErr websocket.CloseError
	if errors.As(readErr, &closeErr) {
		ns.h.HandleClose(StatusCode(closeErr.Code), closeErr.Reason, true)
		return
	}

	ns.mu.Lock()
	closing, code, reason := ns.closing, ns.closeCode, ns.closeReason
	ns.mu.Unlock()

	if closing {
		err := <-ns.closeDone
		if err == nil {
			ns.h.HandleClose(code, reason, true)
			return
		}
		if errors.As(err, &closeErr) {
			ns.h.HandleClose(StatusCode(closeErr.Code), closeErr.Reason, true)
			return
		}
		readErr = err
	}
	ns.h.HandleError(readErr)
	ns.h.HandleClose(StatusAbnormalClosure, "", false)
}

func (ns *netSocket) Send(kind MessageKind, payload []byte) error {
	ns.mu.Lock()
	conn, closing := ns.conn, ns.closing
	ns.mu.Unlock()
	if conn == nil || closing {
		return ErrNotConnected
	}

	typ := websocket.MessageBinary
	if kind == MessageText {
		typ = websocket.MessageText
	}
	ctx, cancel := context.WithTimeout(ns.ctx, nativeWriteTimeout)
	defer cancel()
	return conn.Write(ctx, typ, payload)
}

func (ns *netSocket) Close(code StatusCode, reason string) error {
	ns.mu.Lock()
	if ns.closing {
		ns.mu.Unlock()
		return nil
	}
	ns.closing, ns.closeCode, ns.closeReason = true, code, reason
	conn := ns.conn
	ns.mu.Unlock()

	if conn == nil {
		ns.ctxCancel()
		return nil
	}
	go func() {
		ns.closeDone <- conn.Close(websocket.StatusCode(code), reason)
	}()
	return nil
}
