package wasmnet_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/tarndt/wasmnet"
)

//These tests are intended to run in a headless browser against the echo endpoint served by
// demo/server, e.g. WASMNET_ECHO_URL=ws://localhost:8080/echo

func echoURL(t *testing.T) string {
	url := os.Getenv("WASMNET_ECHO_URL")
	if url == "" {
		t.Skip("WASMNET_ECHO_URL is not set")
	}
	return url
}

func TestBrowserEchoSmall(t *testing.T) {
	const testTO = time.Second * 10
	testCtx, testCancel := context.WithTimeout(context.Background(), testTO)
	defer testCancel()

	url := echoURL(t)
	conn, err := wasmnet.Dial(testCtx, url, nil)
	if err != nil {
		t.Fatalf("Could not construct test websocket against %q; Details: %s", url, err)
	}
	defer conn.Close(wasmnet.StatusNormalClosure, "")
	events := conn.Events()

	var msgBuf bytes.Buffer
	for i := byte('!'); i < '~'; i++ {
		msgBuf.WriteByte(i)
		if err = conn.SendBinary(msgBuf.Bytes()); err != nil {
			t.Fatalf("SendBinary failed; Details: %s", err)
		}
		expectEvent(t, events, wasmnet.Message{Kind: wasmnet.MessageBinary, Data: msgBuf.Bytes()})
	}
}

func TestBrowserEchoTextAndClose(t *testing.T) {
	const testTO = time.Second * 10
	testCtx, testCancel := context.WithTimeout(context.Background(), testTO)
	defer testCancel()

	url := echoURL(t)
	conn, err := wasmnet.Dial(testCtx, url, nil)
	if err != nil {
		t.Fatalf("Could not construct test websocket against %q; Details: %s", url, err)
	}
	events := conn.Events()

	if err = conn.SendText("hi"); err != nil {
		t.Fatalf("SendText failed; Details: %s", err)
	}
	expectEvent(t, events, wasmnet.Message{Kind: wasmnet.MessageText, Data: []byte("hi")})

	if err = conn.Close(wasmnet.StatusNormalClosure, "bye"); err != nil {
		t.Fatalf("Close failed; Details: %s", err)
	}
	expectEvent(t, events, wasmnet.Closed{Code: wasmnet.StatusNormalClosure, Reason: "bye", Clean: true})
	expectEOF(t, events)
}
