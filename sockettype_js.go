package wasmnet

import (
	"syscall/js"
)

//binaryType mirrors the WebSocket.binaryType property.
// See https://developer.mozilla.org/en-US/docs/Web/API/WebSocket/binaryType
type binaryType uint8

const (
	binaryTypeUnknown binaryType = iota
	binaryTypeBlob
	binaryTypeArrayBuffer
)

//binaryTypeOf returns the binary type of the provided JavaScript websocket object
func binaryTypeOf(websocket js.Value) binaryType {
	switch websocket.Get("binaryType").String() {
	case "blob":
		return binaryTypeBlob
	case "arraybuffer":
		return binaryTypeArrayBuffer
	default:
		return binaryTypeUnknown
	}
}

func (bt binaryType) String() string {
	switch bt {
	case binaryTypeArrayBuffer:
		return "arraybuffer"
	case binaryTypeBlob:
		return "blob"
	default:
		return "unknown"
	}
}

//apply sets the binary type of websocket and reports whether the browser accepted it
func (bt binaryType) apply(websocket js.Value) bool {
	websocket.Set("binaryType", bt.String())
	return binaryTypeOf(websocket) == bt
}
