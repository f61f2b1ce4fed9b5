//go:build !js

package wasmnet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

var errRedirectNotAllowed = errors.New("redirect not allowed by request redirect mode")

//httpFetcher implements Fetcher with net/http. Credentials, mode, referrer policy and integrity are
// enforced by browsers only and are ignored here.
type httpFetcher struct {
	client *http.Client
}

func platformFetcher() Fetcher {
	return NewHTTPFetcher(nil)
}

//NewHTTPFetcher returns a Fetcher using client, or http.DefaultClient if nil
func NewHTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client}
}

func (hf *httpFetcher) Fetch(ctx context.Context, fr *FetchRequest) (*Response, error) {
	var body io.Reader
	if len(fr.Body) > 0 {
		body = bytes.NewReader(fr.Body)
	}
	req, err := http.NewRequestWithContext(ctx, string(fr.Method), fr.URL, body)
	if err != nil {
		return nil, fmt.Errorf("fetch: Invalid request; Details: %w", err)
	}
	if fr.Header != nil {
		req.Header = fr.Header.Clone()
	}
	applyCacheMode(req.Header, fr.Cache)
	if fr.Referrer != "" && fr.Referrer != "about:client" && req.Header.Get("Referer") == "" {
		req.Header.Set("Referer", fr.Referrer)
	}

	client := *hf.client
	client.CheckRedirect = redirectPolicy(fr.Redirect, hf.client.CheckRedirect)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w; Details: %w", ErrAborted, err)
		}
		return nil, fmt.Errorf("fetch: %s %s: %w; Details: %w", fr.Method, fr.URL, ErrTransport, err)
	}

	finalURL := resp.Request.URL.String()
	return NewResponse(ResponseInit{
		URL:        finalURL,
		Redirected: finalURL != req.URL.String(),
		Status:     resp.StatusCode,
		StatusText: strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "),
		Header:     resp.Header,
		Body:       resp.Body,
	}), nil
}

//applyCacheMode approximates the fetch cache modes with request headers
func applyCacheMode(header http.Header, cache RequestCache) {
	if header.Get("Cache-Control") != "" {
		return
	}
	switch cache {
	case CacheNoStore:
		header.Set("Cache-Control", "no-store")
	case CacheReload, CacheNoCache:
		header.Set("Cache-Control", "no-cache")
		header.Set("Pragma", "no-cache")
	case CacheForceCache:
		header.Set("Cache-Control", "max-stale")
	case CacheOnlyIfCached:
		header.Set("Cache-Control", "only-if-cached")
	}
}

//redirectPolicy maps a fetch redirect mode onto http.Client.CheckRedirect. Manual returns the
// redirect response itself rather than the browser's opaque redirect.
func redirectPolicy(mode RequestRedirect, follow func(*http.Request, []*http.Request) error) func(*http.Request, []*http.Request) error {
	switch mode {
	case RedirectError:
		return func(*http.Request, []*http.Request) error { return errRedirectNotAllowed }
	case RedirectManual:
		return func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	default:
		return follow
	}
}
