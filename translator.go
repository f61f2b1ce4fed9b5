package wasmnet

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

//translator is the Handler a Conn registers with its Transport. Each callback is translated into an
// Event and published in the calling context; nothing here may block, in the browser it runs inside a
// JavaScript event listener.
type translator Conn

var _ Handler = (*translator)(nil)

func (t *translator) HandleOpen(subprotocol string) {
	c := (*Conn)(t)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened || c.state == StateClosed {
		c.log.Warn("WebSocket: Ignoring duplicate or late open callback", "state", c.state)
		return
	}
	c.opened, c.subprotocol = true, subprotocol
	if c.state == StateConnecting {
		c.state = StateOpen
	}
	close(c.openCh)
	c.events.Send(Connected{Subprotocol: subprotocol})
	c.log.Debug("WebSocket: Connected", "subprotocol", subprotocol)
}

func (t *translator) HandleMessage(kind MessageKind, data []byte) {
	c := (*Conn)(t)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	if !c.opened {
		c.log.Warn("WebSocket: Message delivered before open", "kind", kind, "size", len(data))
		c.publishError(transportError(fmt.Errorf("%s message of %d bytes delivered before open", kind, len(data))))
		return
	}

	switch kind {
	case MessageText:
		if !utf8.Valid(data) {
			c.publishError(decodeError("text message of %d bytes is not valid UTF-8", len(data)))
			return
		}
	case MessageBinary:
	default:
		c.publishError(decodeError("unknown message kind %d", uint8(kind)))
		return
	}
	c.events.Send(Message{Kind: kind, Data: data})
}

func (t *translator) HandleError(err error) {
	c := (*Conn)(t)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	c.publishError(transportError(err))
}

func (t *translator) HandleClose(code StatusCode, reason string, wasClean bool) {
	c := (*Conn)(t)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		c.log.Warn("WebSocket: Ignoring duplicate close callback", "code", code)
		return
	}
	ev := Closed{Code: code, Reason: reason, Clean: wasClean && c.opened}
	c.state, c.closeStatus = StateClosed, ev
	c.events.Close(ev)
	close(c.done)

	level := slog.LevelDebug
	if !ev.Clean {
		level = slog.LevelInfo
	}
	c.log.Log(context.Background(), level, "WebSocket: Closed", "code", code, "reason", reason, "clean", ev.Clean)
}

//publishError must be called with c.mu held
func (c *Conn) publishError(err error) {
	c.log.Debug("WebSocket: Error", "err", err)
	c.events.Send(ErrorEvent{Err: err})
}
