package wasmnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fxamacker/cbor/v2"
)

//go:generate go tool mockgen -destination=./internal/mocks/mocks.go -package=mocks . Transport,Fetcher

//Method is an HTTP request method
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
	MethodPut    Method = http.MethodPut
)

//RequestCache is the fetch cache mode.
// See https://developer.mozilla.org/en-US/docs/Web/API/Request/cache
type RequestCache string

const (
	CacheDefault      RequestCache = "default"
	CacheNoStore      RequestCache = "no-store"
	CacheReload       RequestCache = "reload"
	CacheNoCache      RequestCache = "no-cache"
	CacheForceCache   RequestCache = "force-cache"
	CacheOnlyIfCached RequestCache = "only-if-cached"
)

//RequestCredentials controls whether cookies and auth are sent
type RequestCredentials string

const (
	CredentialsOmit       RequestCredentials = "omit"
	CredentialsSameOrigin RequestCredentials = "same-origin"
	CredentialsInclude    RequestCredentials = "include"
)

//RequestMode is the fetch CORS mode
type RequestMode string

const (
	ModeSameOrigin RequestMode = "same-origin"
	ModeNoCORS     RequestMode = "no-cors"
	ModeCORS       RequestMode = "cors"
	ModeNavigate   RequestMode = "navigate"
)

//RequestRedirect is the fetch redirect policy
type RequestRedirect string

const (
	RedirectFollow RequestRedirect = "follow"
	RedirectError  RequestRedirect = "error"
	RedirectManual RequestRedirect = "manual"
)

//ReferrerPolicy is the fetch referrer policy
type ReferrerPolicy string

const (
	ReferrerPolicyNone                        ReferrerPolicy = ""
	ReferrerPolicyNoReferrer                  ReferrerPolicy = "no-referrer"
	ReferrerPolicyNoReferrerWhenDowngrade     ReferrerPolicy = "no-referrer-when-downgrade"
	ReferrerPolicyOrigin                      ReferrerPolicy = "origin"
	ReferrerPolicyOriginWhenCrossOrigin       ReferrerPolicy = "origin-when-cross-origin"
	ReferrerPolicyUnsafeURL                   ReferrerPolicy = "unsafe-url"
	ReferrerPolicySameOrigin                  ReferrerPolicy = "same-origin"
	ReferrerPolicyStrictOrigin                ReferrerPolicy = "strict-origin"
	ReferrerPolicyStrictOriginWhenCrossOrigin ReferrerPolicy = "strict-origin-when-cross-origin"
)

//FetchRequest is a fully built request as handed to a Fetcher. Empty fields mean the platform default.
type FetchRequest struct {
	Method         Method
	URL            string
	Header         http.Header
	Body           []byte
	Cache          RequestCache
	Credentials    RequestCredentials
	Integrity      string
	Mode           RequestMode
	Redirect       RequestRedirect
	Referrer       string
	ReferrerPolicy ReferrerPolicy
}

//Fetcher performs exactly one request. If ctx ends before a response arrives the returned error must
// wrap ErrAborted.
type Fetcher interface {
	Fetch(ctx context.Context, req *FetchRequest) (*Response, error)
}

//DefaultFetcher is the browser's fetch under GOOS=js and net/http elsewhere
var DefaultFetcher Fetcher = platformFetcher()

//Request builds a single fetch call. Setters return the Request so they can be chained:
//
//	resp, err := wasmnet.Get("/api/items").Header("Accept", "application/json").Send(ctx)
type Request struct {
	fr      FetchRequest
	fetcher Fetcher
	err     error
}

//NewRequest creates a GET request for url
func NewRequest(url string) *Request {
	return &Request{fr: FetchRequest{
		Method: MethodGet,
		URL:    url,
		Header: make(http.Header),
	}}
}

func Get(url string) *Request    { return NewRequest(url).Method(MethodGet) }
func Post(url string) *Request   { return NewRequest(url).Method(MethodPost) }
func Put(url string) *Request    { return NewRequest(url).Method(MethodPut) }
func Delete(url string) *Request { return NewRequest(url).Method(MethodDelete) }
func Patch(url string) *Request  { return NewRequest(url).Method(MethodPatch) }

func (r *Request) Method(method Method) *Request {
	r.fr.Method = method
	return r
}

//Header sets a header, replacing any previous value
func (r *Request) Header(key, value string) *Request {
	r.fr.Header.Set(key, value)
	return r
}

func (r *Request) Body(body []byte) *Request {
	r.fr.Body = body
	return r
}

func (r *Request) BodyString(body string) *Request {
	return r.Body([]byte(body))
}

//JSON encodes v as the body and defaults Content-Type to application/json
func (r *Request) JSON(v any) *Request {
	body, err := json.Marshal(v)
	if err != nil {
		r.err = fmt.Errorf("fetch: Could not encode JSON body; Details: %w", err)
		return r
	}
	return r.Body(body).defaultContentType("application/json")
}

//CBOR encodes v as the body and defaults Content-Type to application/cbor
func (r *Request) CBOR(v any) *Request {
	body, err := cbor.Marshal(v)
	if err != nil {
		r.err = fmt.Errorf("fetch: Could not encode CBOR body; Details: %w", err)
		return r
	}
	return r.Body(body).defaultContentType("application/cbor")
}

func (r *Request) defaultContentType(contentType string) *Request {
	if r.fr.Header.Get("Content-Type") == "" {
		r.fr.Header.Set("Content-Type", contentType)
	}
	return r
}

func (r *Request) Cache(cache RequestCache) *Request {
	r.fr.Cache = cache
	return r
}

func (r *Request) Credentials(credentials RequestCredentials) *Request {
	r.fr.Credentials = credentials
	return r
}

//Integrity sets the subresource integrity metadata, e.g. "sha256-..."
func (r *Request) Integrity(integrity string) *Request {
	r.fr.Integrity = integrity
	return r
}

func (r *Request) Mode(mode RequestMode) *Request {
	r.fr.Mode = mode
	return r
}

func (r *Request) Redirect(redirect RequestRedirect) *Request {
	r.fr.Redirect = redirect
	return r
}

func (r *Request) Referrer(referrer string) *Request {
	r.fr.Referrer = referrer
	return r
}

func (r *Request) ReferrerPolicy(policy ReferrerPolicy) *Request {
	r.fr.ReferrerPolicy = policy
	return r
}

//Fetcher overrides DefaultFetcher for this request
func (r *Request) Fetcher(fetcher Fetcher) *Request {
	r.fetcher = fetcher
	return r
}

//Send performs the request. ctx is the abort signal: if it ends before the response arrives the error
// wraps ErrAborted, any other failure wraps ErrTransport.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w; Details: %w", ErrAborted, err)
	}

	fetcher := r.fetcher
	if fetcher == nil {
		fetcher = DefaultFetcher
	}
	fr := r.fr
	fr.Header = r.fr.Header.Clone()

	resp, err := fetcher.Fetch(ctx, &fr)
	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, ErrAborted):
		return nil, err
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%w; Details: %w", ErrAborted, err)
	case errors.Is(err, ErrTransport):
		return nil, err
	default:
		return nil, fmt.Errorf("fetch: %s %s: %w; Details: %w", fr.Method, fr.URL, ErrTransport, err)
	}
}
