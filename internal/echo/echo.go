//go:build !js

// Package echo is a WebSocket endpoint that writes every message back to its sender. A text message of
// the form "close <code> <reason>" instead makes the server close the connection with that status.
package echo

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"nhooyr.io/websocket"
)

//CloseCommand prefixes the text message that asks the server to close
const CloseCommand = "close "

const readLimit = 32 << 20

type Handler struct {
	//Subprotocols the server is willing to select, in order of preference
	Subprotocols []string

	//OriginPatterns are host patterns allowed in cross origin requests
	OriginPatterns []string

	Logger *slog.Logger
}

var _ http.Handler = (*Handler)(nil)

func (h *Handler) ServeHTTP(wtr http.ResponseWriter, req *http.Request) {
	log := h.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("remote", req.RemoteAddr)

	ws, err := websocket.Accept(wtr, req, &websocket.AcceptOptions{
		Subprotocols:   h.Subprotocols,
		OriginPatterns: h.OriginPatterns,
	})
	if err != nil {
		log.Warn("echo: Could not accept websocket", "err", err)
		return
	}
	defer ws.Close(websocket.StatusInternalError, "echo: handler exited")
	ws.SetReadLimit(readLimit)
	log.Debug("echo: Accepted", "subprotocol", ws.Subprotocol())

	ctx := req.Context()
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			log.Debug("echo: Connection ended", "status", websocket.CloseStatus(err), "err", err)
			return
		}

		if typ == websocket.MessageText && strings.HasPrefix(string(data), CloseCommand) {
			code, reason := parseClose(string(data))
			log.Debug("echo: Closing on request", "code", code, "reason", reason)
			ws.Close(code, reason)
			return
		}

		if err = ws.Write(ctx, typ, data); err != nil {
			log.Debug("echo: Write failed", "err", err)
			return
		}
	}
}

//parseClose parses "close <code> <reason>"; the reason may contain spaces
func parseClose(cmd string) (websocket.StatusCode, string) {
	codeStr, reason, _ := strings.Cut(strings.TrimPrefix(cmd, CloseCommand), " ")
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return websocket.StatusNormalClosure, reason
	}
	return websocket.StatusCode(code), reason
}
