package wasmnet

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func newTextResponse(contentType, body string) *Response {
	return NewResponse(ResponseInit{
		Status: 200,
		Header: http.Header{"Content-Type": {contentType}},
		Body:   io.NopCloser(strings.NewReader(body)),
	})
}

func TestResponseBodyUsedOnce(t *testing.T) {
	resp := newTextResponse("application/json", `{"a":1}`)
	if resp.BodyUsed() {
		t.Fatal("Fresh response reports its body used")
	}

	var v map[string]int
	if err := resp.JSON(&v); err != nil || v["a"] != 1 {
		t.Fatalf("JSON decoded (%v, %v)", v, err)
	}
	if !resp.BodyUsed() {
		t.Fatal("Response body not marked used after JSON")
	}
	if _, err := resp.Bytes(); !errors.Is(err, ErrBodyUsed) {
		t.Fatalf("Second read returned %v rather than ErrBodyUsed", err)
	}
}

func TestResponseEmptyBody(t *testing.T) {
	resp := NewResponse(ResponseInit{Status: 204})
	buf, err := resp.Bytes()
	if err != nil || len(buf) != 0 {
		t.Fatalf("Empty response read as (%q, %v)", buf, err)
	}
	if !resp.OK() {
		t.Fatal("204 is not OK")
	}
}

func TestResponseFormData(t *testing.T) {
	form, err := newTextResponse("application/x-www-form-urlencoded", "a=1&b=two&a=3").FormData()
	if err != nil {
		t.Fatalf("Could not parse urlencoded form; Details: %s", err)
	}
	if got := form.Value["a"]; len(got) != 2 || got[1] != "3" || form.Value["b"][0] != "two" {
		t.Fatalf("Parsed urlencoded form %v", form.Value)
	}

	const multipartBody = "--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"field\"\r\n\r\n" +
		"value\r\n" +
		"--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"f.txt\"\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"contents\r\n" +
		"--XYZ--\r\n"
	form, err = newTextResponse("multipart/form-data; boundary=XYZ", multipartBody).FormData()
	if err != nil {
		t.Fatalf("Could not parse multipart form; Details: %s", err)
	}
	if form.Value["field"][0] != "value" || len(form.File["file"]) != 1 || form.File["file"][0].Filename != "f.txt" {
		t.Fatalf("Parsed multipart form values %v files %v", form.Value, form.File)
	}

	if _, err = newTextResponse("text/plain", "x").FormData(); err == nil {
		t.Fatal("Plain text parsed as form data")
	}
}
