package wasmnet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"syscall/js"
)

//browserFetcher implements Fetcher with the browser's fetch.
// See: https://developer.mozilla.org/en-US/docs/Web/API/fetch
type browserFetcher struct{}

func platformFetcher() Fetcher {
	return browserFetcher{}
}

func (browserFetcher) Fetch(ctx context.Context, fr *FetchRequest) (_ *Response, err error) {
	defer recoverJSError(&err)

	init := js.Global().Get("Object").New()
	init.Set("method", string(fr.Method))

	headers := js.Global().Get("Headers").New()
	for key, values := range fr.Header {
		for _, value := range values {
			headers.Call("append", key, value)
		}
	}
	init.Set("headers", headers)
	if len(fr.Body) > 0 {
		init.Set("body", jsBytes(fr.Body))
	}

	for key, value := range map[string]string{
		"cache":          string(fr.Cache),
		"credentials":    string(fr.Credentials),
		"integrity":      fr.Integrity,
		"mode":           string(fr.Mode),
		"redirect":       string(fr.Redirect),
		"referrer":       fr.Referrer,
		"referrerPolicy": string(fr.ReferrerPolicy),
	} {
		if value != "" {
			init.Set(key, value)
		}
	}

	controller := js.Global().Get("AbortController").New()
	init.Set("signal", controller.Get("signal"))
	stopAbort := context.AfterFunc(ctx, func() {
		controller.Call("abort")
	})

	jsResp, err := awaitPromise(js.Global().Call("fetch", fr.URL, init))
	if err != nil {
		stopAbort()
		if isAbortError(err) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w; Details: %w", ErrAborted, err)
		}
		return nil, fmt.Errorf("fetch: %s %s: %w; Details: %w", fr.Method, fr.URL, ErrTransport, err)
	}

	header := make(http.Header)
	forEach := js.FuncOf(func(this js.Value, args []js.Value) any {
		header.Add(args[1].String(), args[0].String())
		return nil
	})
	jsResp.Get("headers").Call("forEach", forEach)
	forEach.Release()

	var body io.ReadCloser
	if jsBody := jsResp.Get("body"); jsBody.IsNull() || jsBody.IsUndefined() {
		body = newReaderArrayPromise(jsResp.Call("arrayBuffer"))
	} else {
		body = newStreamReader(jsBody.Call("getReader"))
	}

	return NewResponse(ResponseInit{
		URL:        jsResp.Get("url").String(),
		Redirected: jsResp.Get("redirected").Bool(),
		Status:     jsResp.Get("status").Int(),
		StatusText: jsResp.Get("statusText").String(),
		Header:     header,
		Body:       &abortOnClose{body: body, stop: stopAbort},
	}), nil
}

//abortOnClose keeps the request abortable while its body is being read. The pooled reader it wraps is
// released on the first Close only; later calls are no-ops and reads after Close fail.
type abortOnClose struct {
	mu   sync.Mutex
	body io.ReadCloser
	stop func() bool
}

func (aoc *abortOnClose) Read(p []byte) (int, error) {
	aoc.mu.Lock()
	defer aoc.mu.Unlock()
	if aoc.body == nil {
		return 0, errBodyClosed
	}
	return aoc.body.Read(p)
}

func (aoc *abortOnClose) Close() error {
	aoc.mu.Lock()
	body := aoc.body
	aoc.body = nil
	aoc.mu.Unlock()
	if body == nil {
		return nil
	}
	aoc.stop()
	return body.Close()
}
