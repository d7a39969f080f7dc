package onionfetch

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Response is a fully buffered snapshot of a transport response.
// It is used both as the value handed to response interceptors
// and as the object stored in the cache.
type Response struct {
	Status     int
	StatusText string
	URL        string
	Header     http.Header
	Body       []byte

	// FromCache is set on snapshots served from, or stored into, the cache
	FromCache bool

	date time.Time
}

// OK reports whether the status is in the 2xx range
func (res *Response) OK() bool {
	return res.Status >= 200 && res.Status < 300
}

// Text returns the body as a string
func (res *Response) Text() string {
	return string(res.Body)
}

// JSON decodes the body into v
func (res *Response) JSON(v interface{}) error {
	return json.Unmarshal(res.Body, v)
}

// Clone returns a deep copy of the snapshot.
// Interceptors always receive a clone so edits made by one
// are never observed by the next.
func (res *Response) Clone() *Response {
	if res == nil {
		return nil
	}
	var body []byte
	if res.Body != nil {
		body = make([]byte, len(res.Body))
		copy(body, res.Body)
	}
	return &Response{
		Status:     res.Status,
		StatusText: res.StatusText,
		URL:        res.URL,
		Header:     res.Header.Clone(),
		Body:       body,
		FromCache:  res.FromCache,
		date:       res.date,
	}
}

// Date returns the time at which the snapshot was taken
func (res *Response) Date() time.Time {
	return res.date
}

// NewResponse builds a snapshot for transports outside this package
func NewResponse(status int, header http.Header, body []byte) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{
		Status:     status,
		StatusText: http.StatusText(status),
		Header:     header,
		Body:       body,
		date:       time.Now(),
	}
}

func newHTTPResponse(r *http.Response, body []byte) *Response {
	res := NewResponse(r.StatusCode, r.Header.Clone(), body)
	if i := strings.IndexByte(r.Status, ' '); i >= 0 {
		res.StatusText = r.Status[i+1:]
	}
	if r.Request != nil && r.Request.URL != nil {
		res.URL = r.Request.URL.String()
	}
	return res
}

// Result is resolved instead of the parsed body when GetResponse is set
type Result struct {
	Data     interface{}
	Response *Response
}
