package onionfetch

import (
	"net/url"
	"strings"
	"time"
)

// ErrorHandler recovers from a failed request. Returning a nil error
// resolves the call with the returned value; a non-nil error becomes the
// final failure.
type ErrorHandler func(err error) (interface{}, error)

// Options is the configuration bag of a request.
// A Client holds one as its instance defaults; each call copies it and
// applies its RequestOptions on top.
type Options struct {
	// Method is the HTTP verb, always stored lower case
	// Default: "get"
	Method string

	// Headers are merged key by key over the instance defaults
	Headers map[string]string

	// Params are serialised into the query string and are part of the cache key.
	// Merged key by key over the instance defaults.
	Params url.Values

	// ParamsSerializer replaces the default query encoding
	ParamsSerializer func(url.Values) string

	// Data is encoded into Body for post, put, patch and delete requests
	// according to RequestType
	Data interface{}

	// Body is sent as is. It is filled from Data when left empty.
	Body []byte

	// RequestType selects how Data is encoded: "json" or "form"
	// Default: "json"
	RequestType string

	// Timeout bounds the transport call. Zero disables the timeout.
	Timeout time.Duration

	// CancelToken lets the caller abandon the request
	CancelToken *CancelToken

	// UseCache enables cache lookup and storage for this request
	UseCache bool

	// ValidateCache decides whether the request may use the cache at all
	// Default: method is "get"
	ValidateCache func(url string, o *Options) bool

	// TTL is the lifetime of a cached response. Zero means it never expires.
	TTL time.Duration

	// MaxCache bounds the number of cached responses, oldest evicted first.
	// Only read from the instance defaults. Zero means unbounded.
	MaxCache int

	// Prefix and Suffix decorate the url before the pipeline runs
	Prefix string
	Suffix string

	// ResponseType selects how the body is decoded: "json", "text", "blob" or "arrayBuffer"
	// Default: "json"
	ResponseType string

	// Charset of the response body, "utf8" or "gbk"
	// Default: "utf8"
	Charset string

	// RawResponse skips body decoding and resolves with the *Response itself
	RawResponse bool

	// ThrowErrIfParseFail fails the request when a json body does not parse.
	// Otherwise the raw text is returned.
	ThrowErrIfParseFail bool

	// GetResponse resolves with a *Result carrying both the decoded body and the response
	GetResponse bool

	// ErrorHandler is invoked with any failure of the request
	ErrorHandler ErrorHandler
}

// RequestOption overrides one field of the merged options of a call
type RequestOption func(*Options)

func (o Options) clone() *Options {
	c := o
	c.Headers = make(map[string]string, len(o.Headers))
	for k, v := range o.Headers {
		c.Headers[k] = v
	}
	c.Params = make(url.Values, len(o.Params))
	for k, v := range o.Params {
		c.Params[k] = append([]string(nil), v...)
	}
	if o.Body != nil {
		c.Body = append([]byte(nil), o.Body...)
	}
	return &c
}

// mergeOptions resolves the options of one call: instance defaults first,
// then each per-call option in order.
func mergeOptions(defaults Options, opts ...RequestOption) *Options {
	o := defaults.clone()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.Method = normalizeMethod(o.Method)
	return o
}

func normalizeMethod(m string) string {
	if m == "" {
		return "get"
	}
	return strings.ToLower(m)
}

// WithMethod sets the HTTP verb
func WithMethod(method string) RequestOption {
	return func(o *Options) {
		o.Method = method
	}
}

// WithHeader sets a single header
func WithHeader(key, value string) RequestOption {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = map[string]string{}
		}
		o.Headers[key] = value
	}
}

// WithHeaders merges headers key by key
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = map[string]string{}
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithParam sets a single query parameter
func WithParam(key string, values ...string) RequestOption {
	return func(o *Options) {
		if o.Params == nil {
			o.Params = url.Values{}
		}
		o.Params[key] = values
	}
}

// WithParams merges query parameters key by key
func WithParams(params url.Values) RequestOption {
	return func(o *Options) {
		if o.Params == nil {
			o.Params = url.Values{}
		}
		for k, v := range params {
			o.Params[k] = append([]string(nil), v...)
		}
	}
}

// WithParamsSerializer replaces the default query encoding
func WithParamsSerializer(fn func(url.Values) string) RequestOption {
	return func(o *Options) {
		o.ParamsSerializer = fn
	}
}

// WithData sets the payload encoded according to RequestType
func WithData(data interface{}) RequestOption {
	return func(o *Options) {
		o.Data = data
	}
}

// WithBody sets a raw body
func WithBody(body []byte) RequestOption {
	return func(o *Options) {
		o.Body = body
	}
}

// WithRequestType selects "json" or "form" encoding for Data
func WithRequestType(t string) RequestOption {
	return func(o *Options) {
		o.RequestType = t
	}
}

// WithTimeout bounds the transport call
func WithTimeout(d time.Duration) RequestOption {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithCancelToken attaches a cancellation token
func WithCancelToken(t *CancelToken) RequestOption {
	return func(o *Options) {
		o.CancelToken = t
	}
}

// WithCache enables the cache for this request with the given ttl
func WithCache(ttl time.Duration) RequestOption {
	return func(o *Options) {
		o.UseCache = true
		o.TTL = ttl
	}
}

// WithUseCache toggles the cache for this request
func WithUseCache(use bool) RequestOption {
	return func(o *Options) {
		o.UseCache = use
	}
}

// WithTTL sets the lifetime of a cached response
func WithTTL(ttl time.Duration) RequestOption {
	return func(o *Options) {
		o.TTL = ttl
	}
}

// WithValidateCache replaces the cache eligibility check
func WithValidateCache(fn func(url string, o *Options) bool) RequestOption {
	return func(o *Options) {
		o.ValidateCache = fn
	}
}

// WithMaxCache bounds the cache size. Only meaningful with Client.ExtendOptions.
func WithMaxCache(n int) RequestOption {
	return func(o *Options) {
		o.MaxCache = n
	}
}

// WithPrefix prepends prefix to the url
func WithPrefix(prefix string) RequestOption {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithSuffix appends suffix to the url
func WithSuffix(suffix string) RequestOption {
	return func(o *Options) {
		o.Suffix = suffix
	}
}

// WithResponseType selects how the body is decoded
func WithResponseType(t string) RequestOption {
	return func(o *Options) {
		o.ResponseType = t
	}
}

// WithCharset sets the response charset
func WithCharset(charset string) RequestOption {
	return func(o *Options) {
		o.Charset = charset
	}
}

// WithRawResponse skips body decoding
func WithRawResponse() RequestOption {
	return func(o *Options) {
		o.RawResponse = true
	}
}

// WithThrowErrIfParseFail fails on json bodies that do not parse
func WithThrowErrIfParseFail() RequestOption {
	return func(o *Options) {
		o.ThrowErrIfParseFail = true
	}
}

// WithGetResponse resolves with a *Result instead of the bare body
func WithGetResponse() RequestOption {
	return func(o *Options) {
		o.GetResponse = true
	}
}

// WithErrorHandler sets the error handler of this request
func WithErrorHandler(h ErrorHandler) RequestOption {
	return func(o *Options) {
		o.ErrorHandler = h
	}
}
