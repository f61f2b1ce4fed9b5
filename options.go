package wasmnet

import (
	"log/slog"
	"net/http"
)

//Options configures a Conn. A nil *Options is valid and selects every default.
type Options struct {
	//Protocols is the list of requested subprotocols
	Protocols []string

	//StreamCapacity bounds how many unread events each Stream may hold. When a Stream lags further
	// than that its oldest events are dropped (the final Closed event never is). Zero means unbounded.
	StreamCapacity int

	//Logger receives lifecycle logging; nil discards it
	Logger *slog.Logger

	//Dialer overrides the platform transport
	Dialer DialFunc

	//HTTPHeader is sent with the opening handshake. Browsers do not allow this and ignore it.
	HTTPHeader http.Header
}

func (opts *Options) withDefaults() Options {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Dialer == nil {
		o.Dialer = platformDialer(o.HTTPHeader)
	}
	return o
}
