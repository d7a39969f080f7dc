package onionfetch

// RequestInterceptor may rewrite the url and options before the pipeline
// runs. Returning an empty url or nil options keeps the current value.
type RequestInterceptor func(url string, o *Options) (string, *Options, error)

// ResponseInterceptor receives a clone of the transport response and
// returns the response handed to the next interceptor.
type ResponseInterceptor func(res *Response, o *Options) (*Response, error)

// InterceptorOptions selects where an interceptor is registered.
// The zero value registers on the client instance.
type InterceptorOptions struct {
	Global bool
}

// addfixInterceptor applies Prefix and Suffix
func addfixInterceptor(url string, o *Options) (string, *Options, error) {
	if o == nil {
		return url, o, nil
	}
	if o.Prefix != "" {
		url = o.Prefix + url
	}
	if o.Suffix != "" {
		url = url + o.Suffix
	}
	return url, o, nil
}

// runRequestInterceptors applies interceptors in order, folding each
// result into req before the next one runs.
func runRequestInterceptors(req *Request, interceptors []RequestInterceptor) error {
	for _, h := range interceptors {
		url, opts, err := h(req.URL, req.Options)
		if err != nil {
			return err
		}
		if url != "" {
			req.URL = url
		}
		if opts != nil {
			req.Options = opts
		}
	}
	return nil
}
