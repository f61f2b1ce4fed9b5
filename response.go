package wasmnet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/fxamacker/cbor/v2"
)

const formMaxMemory = 32 << 20

//ErrBodyUsed is returned when a Response body is read a second time
var ErrBodyUsed = errors.New("fetch: Response body already used")

var errBodyClosed = errors.New("fetch: Response body closed")

//ResponseInit carries everything a Fetcher learned about a response
type ResponseInit struct {
	URL        string
	Redirected bool
	Status     int
	StatusText string
	Header     http.Header
	Body       io.ReadCloser
}

//Response is the result of a Request. Status, headers and body are exactly what the platform returned.
type Response struct {
	init ResponseInit
	used atomic.Bool
}

func NewResponse(init ResponseInit) *Response {
	if init.Header == nil {
		init.Header = make(http.Header)
	}
	if init.Body == nil {
		init.Body = http.NoBody
	}
	return &Response{init: init}
}

//URL is the final URL after redirects
func (resp *Response) URL() string { return resp.init.URL }

func (resp *Response) Redirected() bool { return resp.init.Redirected }

func (resp *Response) Status() int { return resp.init.Status }

//OK reports a status in the range 200-299
func (resp *Response) OK() bool { return resp.init.Status >= 200 && resp.init.Status <= 299 }

func (resp *Response) StatusText() string { return resp.init.StatusText }

func (resp *Response) Header() http.Header { return resp.init.Header }

//BodyUsed reports whether the body has been handed out
func (resp *Response) BodyUsed() bool { return resp.used.Load() }

//Body hands out the body for streaming; the caller must close it. It may only be taken once.
func (resp *Response) Body() (io.ReadCloser, error) {
	if resp.used.Swap(true) {
		return nil, ErrBodyUsed
	}
	return resp.init.Body, nil
}

//Bytes reads and closes the body
func (resp *Response) Bytes() ([]byte, error) {
	body, err := resp.Body()
	if err != nil {
		return nil, err
	}
	defer body.Close()

	buf, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("fetch: Could not read response body; Details: %w", err)
	}
	return buf, nil
}

func (resp *Response) Text() (string, error) {
	buf, err := resp.Bytes()
	return string(buf), err
}

//JSON decodes the body into v
func (resp *Response) JSON(v any) error {
	buf, err := resp.Bytes()
	if err != nil {
		return err
	}
	if err = json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("fetch: Could not decode JSON body; Details: %w", err)
	}
	return nil
}

//CBOR decodes the body into v
func (resp *Response) CBOR(v any) error {
	buf, err := resp.Bytes()
	if err != nil {
		return err
	}
	if err = cbor.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("fetch: Could not decode CBOR body; Details: %w", err)
	}
	return nil
}

//FormData parses an application/x-www-form-urlencoded or multipart/form-data body
func (resp *Response) FormData() (*multipart.Form, error) {
	mediaType, params, err := mime.ParseMediaType(resp.init.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("fetch: Could not parse Content-Type; Details: %w", err)
	}

	buf, err := resp.Bytes()
	if err != nil {
		return nil, err
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(buf))
		if err != nil {
			return nil, fmt.Errorf("fetch: Could not decode form body; Details: %w", err)
		}
		return &multipart.Form{Value: values, File: map[string][]*multipart.FileHeader{}}, nil

	case "multipart/form-data":
		form, err := multipart.NewReader(bytes.NewReader(buf), params["boundary"]).ReadForm(formMaxMemory)
		if err != nil {
			return nil, fmt.Errorf("fetch: Could not decode multipart body; Details: %w", err)
		}
		return form, nil

	default:
		return nil, fmt.Errorf("fetch: Content-Type %q is not form data", mediaType)
	}
}
