package onionfetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

const (
	contentTypeJSON = "application/json;charset=UTF-8"
	contentTypeForm = "application/x-www-form-urlencoded;charset=UTF-8"
)

// encodeQueryMiddleware appends the serialised Params to the url
func encodeQueryMiddleware(c *Context, next Next) error {
	if c == nil || c.Req == nil {
		return next()
	}
	o := c.options()
	c.Req.OriginURL = c.Req.URL

	var query string
	if o.ParamsSerializer != nil {
		query = o.ParamsSerializer(o.Params)
	} else if len(o.Params) > 0 {
		query = o.Params.Encode()
	}
	if query != "" {
		sep := "?"
		if strings.Contains(c.Req.URL, "?") {
			sep = "&"
		}
		c.Req.URL += sep + query
	}
	return next()
}

// bodyMethods carry a request payload
var bodyMethods = map[string]bool{
	"post":   true,
	"put":    true,
	"patch":  true,
	"delete": true,
}

// encodeBodyMiddleware encodes Data into Body for methods with a payload.
// Strings and byte slices are sent as is, url.Values and the form request
// type use form encoding, everything else becomes JSON.
func encodeBodyMiddleware(c *Context, next Next) error {
	if c == nil || c.Req == nil {
		return next()
	}
	o := c.options()
	if !bodyMethods[normalizeMethod(o.Method)] || o.Data == nil || len(o.Body) > 0 {
		return next()
	}
	if o.Headers == nil {
		o.Headers = map[string]string{}
	}

	switch data := o.Data.(type) {
	case []byte:
		o.Body = data
	case string:
		o.Body = []byte(data)
	default:
		_, isValues := data.(url.Values)
		if isValues || strings.EqualFold(o.RequestType, "form") {
			form, ok := formValues(data)
			if !ok {
				return &RequestError{
					Type:    ErrorTypeRequest,
					Message: fmt.Sprintf("cannot form encode %T", data),
					Request: c.Req,
				}
			}
			setDefaultHeader(o.Headers, "Accept", "application/json")
			setDefaultHeader(o.Headers, "Content-Type", contentTypeForm)
			o.Body = []byte(form.Encode())
			break
		}
		b, err := json.Marshal(data)
		if err != nil {
			return &RequestError{Type: ErrorTypeRequest, Message: "encode request body", Request: c.Req, Cause: err}
		}
		setDefaultHeader(o.Headers, "Accept", "application/json")
		setDefaultHeader(o.Headers, "Content-Type", contentTypeJSON)
		o.Body = b
	}
	return next()
}

func formValues(data interface{}) (url.Values, bool) {
	switch v := data.(type) {
	case url.Values:
		return v, true
	case map[string][]string:
		return url.Values(v), true
	case map[string]string:
		form := url.Values{}
		for k, s := range v {
			form.Set(k, s)
		}
		return form, true
	case map[string]interface{}:
		form := url.Values{}
		for k, s := range v {
			form.Set(k, fmt.Sprint(s))
		}
		return form, true
	}
	return nil, false
}

// setDefaultHeader sets key unless the caller already set it, in any case
func setDefaultHeader(h map[string]string, key, value string) {
	for k := range h {
		if strings.EqualFold(k, key) {
			return
		}
	}
	h[key] = value
}
