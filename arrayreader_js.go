package wasmnet

import (
	"io"
	"sync"
	"syscall/js"
)

const pooledBufferMax = 64 * 1024

//arrayReader is an io.ReadCloser over a promise of a JavaScript ArrayBuffer, used for response bodies
// when the browser does not expose Response.body as a ReadableStream.
// See: https://developer.mozilla.org/en-US/docs/Web/API/Response/arrayBuffer
type arrayReader struct {
	jsPromise js.Value
	remaining []byte

	read bool
	err  error
}

var arrayReaderPool = sync.Pool{
	New: func() any {
		return new(arrayReader)
	},
}

func newReaderArrayPromise(arrayPromise js.Value) *arrayReader {
	ar := arrayReaderPool.Get().(*arrayReader)
	ar.jsPromise = arrayPromise
	return ar
}

func (ar *arrayReader) Close() error {
	ar.reset()
	arrayReaderPool.Put(ar)
	return nil
}

func (ar *arrayReader) reset() {
	ar.jsPromise, ar.read, ar.err = js.Value{}, false, nil
	if cap(ar.remaining) < pooledBufferMax {
		ar.remaining = ar.remaining[:0]
	} else {
		ar.remaining = nil
	}
}

func (ar *arrayReader) Read(buf []byte) (n int, err error) {
	if ar.err != nil {
		return 0, ar.err
	}

	if !ar.read {
		ar.read = true
		jsBuf, err := awaitPromise(ar.jsPromise)
		if err != nil {
			ar.err = err
			return 0, err
		}
		ar.remaining = ar.fromArray(jsBuf)
	}

	if len(ar.remaining) < 1 {
		return 0, io.EOF
	}
	n = copy(buf, ar.remaining)
	ar.remaining = ar.remaining[n:]
	return n, nil
}

//fromArray copies arrayBuffer reusing the pooled buffer when it is large enough
func (ar *arrayReader) fromArray(arrayBuffer js.Value) []byte {
	jsBuf := uint8Array.New(arrayBuffer)
	count := jsBuf.Get("byteLength").Int()

	var goBuf []byte
	if count <= cap(ar.remaining) {
		goBuf = ar.remaining[:count]
	} else {
		goBuf = make([]byte, count)
	}
	js.CopyBytesToGo(goBuf, jsBuf)
	return goBuf
}
