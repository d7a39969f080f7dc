package onionfetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
)

// Transport performs the actual request. It is the only I/O dependency of
// the client and must honour ctx cancellation.
type Transport interface {
	Fetch(ctx context.Context, url string, o *Options) (*Response, error)
}

// TransportFunc turns a function into a Transport
type TransportFunc func(ctx context.Context, url string, o *Options) (*Response, error)

func (f TransportFunc) Fetch(ctx context.Context, url string, o *Options) (*Response, error) {
	return f(ctx, url, o)
}

// HTTPTransport is a Transport over net/http. The whole body is read
// into the returned snapshot.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport wraps client, http.DefaultClient when nil
func NewHTTPTransport(client *http.Client) HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return HTTPTransport{Client: client}
}

func (t HTTPTransport) Fetch(ctx context.Context, url string, o *Options) (*Response, error) {
	var body io.Reader
	if len(o.Body) > 0 {
		body = bytes.NewReader(o.Body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(o.Method), url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range o.Headers {
		req.Header.Set(k, v)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return newHTTPResponse(resp, b), nil
}
