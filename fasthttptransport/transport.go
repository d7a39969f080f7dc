// Package fasthttptransport provides an onionfetch.Transport over
// github.com/valyala/fasthttp.
package fasthttptransport

import (
	"context"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/kevburnsjr/onionfetch"
)

// Transport performs requests with a fasthttp.Client.
// fasthttp calls cannot be interrupted, so a context deadline is mapped to
// DoDeadline and plain cancellation is left to the client's race.
type Transport struct {
	Client *fasthttp.Client
}

// New wraps client, a zero fasthttp.Client when nil
func New(client *fasthttp.Client) *Transport {
	if client == nil {
		client = &fasthttp.Client{}
	}
	return &Transport{Client: client}
}

func (t *Transport) Fetch(ctx context.Context, url string, o *onionfetch.Options) (*onionfetch.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := fasthttp.AcquireRequest()
	res := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(res)

	req.SetRequestURI(url)
	req.Header.SetMethod(strings.ToUpper(o.Method))
	for k, v := range o.Headers {
		req.Header.Set(k, v)
	}
	if len(o.Body) > 0 {
		req.SetBody(o.Body)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = t.Client.DoDeadline(req, res, deadline)
	} else {
		err = t.Client.Do(req, res)
	}
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	res.Header.VisitAll(func(k, v []byte) {
		header.Add(string(k), string(v))
	})
	// the response is released on return, keep a copy of the body
	body := append([]byte(nil), res.Body()...)
	snapshot := onionfetch.NewResponse(res.StatusCode(), header, body)
	snapshot.URL = url
	return snapshot, nil
}
