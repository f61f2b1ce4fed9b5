/*
Package wasmnet exposes the browser's two network primitives, the WebSocket and the fetch call, to Go
applications targeting WASM as plain Go types.

wasmnet.Conn wraps a WebSocket. The browser delivers open, message, error and close callbacks at
arbitrary times; Conn translates each of them into a typed Event and fans the events out to any number of
independent wasmnet.Stream readers, which pull events one at a time with Next. Send and Close are
synchronous and never wait on the network. Every connection ends with exactly one Closed event, which is
always the last event any Stream observes.

wasmnet.Request is a builder for a single fetch call and wasmnet.Response is its result.

Outside of the browser (GOOS != js) the same API is served by nhooyr.io/websocket and net/http so code and
tests can run natively.
*/
package wasmnet
