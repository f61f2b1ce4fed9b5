package wasmnet

import (
	"io"
	"sync"
	"syscall/js"
)

//streamReader is an io.ReadCloser over a ReadableStreamDefaultReader, used for response bodies.
// See: https://developer.mozilla.org/en-US/docs/Web/API/ReadableStreamDefaultReader
type streamReader struct {
	remaining []byte
	jsReader  js.Value
	err       error
}

var streamReaderPool = sync.Pool{
	New: func() any {
		return new(streamReader)
	},
}

func newStreamReader(jsReader js.Value) *streamReader {
	sr := streamReaderPool.Get().(*streamReader)
	sr.jsReader = jsReader
	return sr
}

//Close cancels the underlying stream if it was not read to the end
func (sr *streamReader) Close() error {
	if sr.err == nil && !sr.jsReader.IsUndefined() {
		sr.jsReader.Call("cancel")
	}
	sr.reset()
	streamReaderPool.Put(sr)
	return nil
}

func (sr *streamReader) reset() {
	sr.jsReader, sr.err = js.Undefined(), nil
	if cap(sr.remaining) < pooledBufferMax {
		sr.remaining = sr.remaining[:0]
	} else {
		sr.remaining = nil
	}
}

func (sr *streamReader) Read(p []byte) (n int, err error) {
	if sr.err != nil {
		return 0, sr.err
	}
	for len(sr.remaining) == 0 {
		chunk, err := awaitPromise(sr.jsReader.Call("read"))
		if err != nil {
			sr.err = err
			return 0, err
		}
		if chunk.Get("done").Bool() {
			sr.err = io.EOF
			return 0, io.EOF
		}

		jsBuf := chunk.Get("value")
		count := jsBuf.Get("byteLength").Int()
		if count <= cap(sr.remaining) {
			sr.remaining = sr.remaining[:count]
		} else {
			sr.remaining = make([]byte, count)
		}
		js.CopyBytesToGo(sr.remaining, jsBuf)
	}

	n = copy(p, sr.remaining)
	sr.remaining = sr.remaining[n:]
	return n, nil
}
