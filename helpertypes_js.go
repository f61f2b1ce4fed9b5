package wasmnet

import (
	"errors"
	"fmt"
	"syscall/js"
)

var (
	jsUndefined = js.Undefined()
	uint8Array  = js.Global().Get("Uint8Array")
	arrayBuffer = js.Global().Get("ArrayBuffer")
)

//recoverJSError turns a JavaScript exception thrown by a js.Value call into *err.
// Use as: defer recoverJSError(&err)
func recoverJSError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if jsErr, isJS := r.(js.Error); isJS {
		*err = fmt.Errorf("JavaScript exception; Details: %w", jsErr)
		return
	}
	panic(r)
}

//copyArrayBuffer copies a JavaScript ArrayBuffer (or typed array) into a new Go slice
func copyArrayBuffer(buf js.Value) []byte {
	jsBuf := uint8Array.New(buf)
	goBuf := make([]byte, jsBuf.Get("byteLength").Int())
	js.CopyBytesToGo(goBuf, jsBuf)
	return goBuf
}

//jsBytes copies buf into a new JavaScript Uint8Array
func jsBytes(buf []byte) js.Value {
	jsBuf := uint8Array.New(len(buf))
	js.CopyBytesToJS(jsBuf, buf)
	return jsBuf
}

//jsRejection is a JavaScript error value (a rejected promise or an error event)
type jsRejection struct {
	name, message string
}

func (rej jsRejection) Error() string {
	if rej.name == "" {
		return rej.message
	}
	return rej.name + ": " + rej.message
}

//jsErrorOf describes a rejected promise value or error event
func jsErrorOf(v js.Value) error {
	if v.Type() != js.TypeObject {
		return jsRejection{message: v.String()}
	}
	var rej jsRejection
	if name := v.Get("name"); name.Type() == js.TypeString {
		rej.name = name.String()
	}
	if msg := v.Get("message"); msg.Type() == js.TypeString {
		rej.message = msg.String()
	} else {
		rej.message = v.Call("toString").String()
	}
	return rej
}

//awaitPromise blocks the calling goroutine (never a callback) until promise settles
func awaitPromise(promise js.Value) (js.Value, error) {
	valueCh, errCh := make(chan js.Value, 1), make(chan error, 1)

	successCallback := js.FuncOf(func(this js.Value, args []js.Value) any {
		valueCh <- args[0]
		return nil
	})
	defer successCallback.Release()

	failureCallback := js.FuncOf(func(this js.Value, args []js.Value) any {
		errCh <- jsErrorOf(args[0])
		return nil
	})
	defer failureCallback.Release()

	promise.Call("then", successCallback, failureCallback)
	select {
	case v := <-valueCh:
		return v, nil
	case err := <-errCh:
		return jsUndefined, err
	}
}

//isAbortError reports whether err came from an AbortController
func isAbortError(err error) bool {
	var rej jsRejection
	return errors.As(err, &rej) && rej.name == "AbortError"
}
