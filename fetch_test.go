package wasmnet_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/tarndt/wasmnet"
	"github.com/tarndt/wasmnet/internal/mocks"
)

func TestRequestBuilderMapsOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)

	want := &wasmnet.FetchRequest{
		Method:         wasmnet.MethodPost,
		URL:            "https://x/items",
		Header:         http.Header{"Content-Type": {"application/json"}, "X-Trace": {"abc"}},
		Body:           []byte(`{"name":"widget"}`),
		Cache:          wasmnet.CacheNoStore,
		Credentials:    wasmnet.CredentialsInclude,
		Integrity:      "sha256-abc",
		Mode:           wasmnet.ModeCORS,
		Redirect:       wasmnet.RedirectManual,
		Referrer:       "https://x/",
		ReferrerPolicy: wasmnet.ReferrerPolicyNoReferrer,
	}
	fetcher.EXPECT().Fetch(gomock.Any(), want).Return(wasmnet.NewResponse(wasmnet.ResponseInit{Status: 201}), nil)

	resp, err := wasmnet.Post("https://x/items").
		Header("X-Trace", "abc").
		JSON(map[string]string{"name": "widget"}).
		Cache(wasmnet.CacheNoStore).
		Credentials(wasmnet.CredentialsInclude).
		Integrity("sha256-abc").
		Mode(wasmnet.ModeCORS).
		Redirect(wasmnet.RedirectManual).
		Referrer("https://x/").
		ReferrerPolicy(wasmnet.ReferrerPolicyNoReferrer).
		Fetcher(fetcher).
		Send(context.Background())
	if err != nil {
		t.Fatalf("Send failed; Details: %s", err)
	}
	if resp.Status() != 201 || !resp.OK() {
		t.Fatalf("Response status is %d (ok %t)", resp.Status(), resp.OK())
	}
}

func TestGetReturnsResponseUnmodified(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)

	header := http.Header{"X-Odd": {"a", "b"}, "Content-Type": {"text/plain"}}
	native := wasmnet.NewResponse(wasmnet.ResponseInit{
		URL:        "https://x/y",
		Status:     418,
		StatusText: "I'm a teapot",
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("short and stout")),
	})
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fr *wasmnet.FetchRequest) (*wasmnet.Response, error) {
		if fr.Method != wasmnet.MethodGet || fr.URL != "https://x/y" || fr.Body != nil {
			t.Errorf("Fetcher received %s %s with a %d byte body", fr.Method, fr.URL, len(fr.Body))
		}
		return native, nil
	})

	resp, err := wasmnet.Get("https://x/y").Fetcher(fetcher).Send(context.Background())
	if err != nil {
		t.Fatalf("Send failed; Details: %s", err)
	}
	if resp != native {
		t.Fatal("Send did not return the fetcher's response")
	}
	if resp.OK() || resp.StatusText() != "I'm a teapot" || resp.URL() != "https://x/y" {
		t.Fatalf("Response is %d %q from %q", resp.Status(), resp.StatusText(), resp.URL())
	}
	if got := resp.Header()["X-Odd"]; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Response header X-Odd is %v", got)
	}
	if text, err := resp.Text(); err != nil || text != "short and stout" {
		t.Fatalf("Response text is (%q, %v)", text, err)
	}
}

func TestSendClassifiesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)

	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, errors.New("TypeError: Failed to fetch"))
	if _, err := wasmnet.Get("https://x/").Fetcher(fetcher).Send(context.Background()); !errors.Is(err, wasmnet.ErrTransport) || errors.Is(err, wasmnet.ErrAborted) {
		t.Fatalf("Network failure returned %v rather than a transport error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, *wasmnet.FetchRequest) (*wasmnet.Response, error) {
		cancel()
		return nil, errors.New("AbortError: The user aborted a request.")
	})
	if _, err := wasmnet.Get("https://x/").Fetcher(fetcher).Send(ctx); !errors.Is(err, wasmnet.ErrAborted) || errors.Is(err, wasmnet.ErrTransport) {
		t.Fatalf("Aborted request returned %v rather than ErrAborted", err)
	}

	//Already cancelled: the fetcher is never called
	if _, err := wasmnet.Get("https://x/").Fetcher(fetcher).Send(ctx); !errors.Is(err, wasmnet.ErrAborted) {
		t.Fatalf("Request with a cancelled context returned %v rather than ErrAborted", err)
	}
}

func TestBodyEncodingErrors(t *testing.T) {
	if _, err := wasmnet.Post("https://x/").JSON(make(chan int)).Send(context.Background()); err == nil {
		t.Fatal("Unencodable JSON body did not fail")
	}
}

func TestCBORBody(t *testing.T) {
	type item struct {
		Name  string `cbor:"name"`
		Count int    `cbor:"count"`
	}

	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fr *wasmnet.FetchRequest) (*wasmnet.Response, error) {
		if ct := fr.Header.Get("Content-Type"); ct != "application/cbor" {
			t.Errorf("CBOR request has Content-Type %q", ct)
		}
		return wasmnet.NewResponse(wasmnet.ResponseInit{
			Status: 200,
			Header: fr.Header,
			Body:   io.NopCloser(strings.NewReader(string(fr.Body))),
		}), nil
	})

	resp, err := wasmnet.Put("https://x/item").CBOR(item{Name: "bolt", Count: 3}).Fetcher(fetcher).Send(context.Background())
	if err != nil {
		t.Fatalf("Send failed; Details: %s", err)
	}
	var got item
	if err = resp.CBOR(&got); err != nil {
		t.Fatalf("Could not decode CBOR response; Details: %s", err)
	}
	if got.Name != "bolt" || got.Count != 3 {
		t.Fatalf("Decoded %+v", got)
	}
}
