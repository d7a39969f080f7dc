package onionfetch

import (
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// parseResponseMiddleware decodes the *Response left by the core fetch
// middleware into the value the request resolves with. Statuses outside
// 2xx fail with an HttpError carrying the decoded body.
func parseResponseMiddleware(c *Context, next Next) error {
	if err := next(); err != nil {
		if c == nil {
			return err
		}
		return annotate(err, c.Req, c.Res)
	}
	if c == nil || c.Req == nil {
		return nil
	}
	o := c.options()
	if o.RawResponse {
		return nil
	}
	res, ok := c.Response()
	if !ok {
		return nil
	}

	body, err := decodeBody(res, o, c.Req)
	if err != nil {
		return err
	}
	if !res.OK() {
		return &ResponseError{
			Type:     ErrorTypeHTTP,
			Message:  "http error",
			Response: res,
			Data:     body,
			Request:  c.Req,
		}
	}
	if o.GetResponse {
		c.Res = &Result{Data: body, Response: res}
		return nil
	}
	c.Res = body
	return nil
}

func decodeBody(res *Response, o *Options, req *Request) (interface{}, error) {
	if strings.EqualFold(o.Charset, "gbk") {
		text, err := simplifiedchinese.GBK.NewDecoder().Bytes(res.Body)
		if err != nil {
			return nil, &ResponseError{Type: ErrorTypeParse, Message: "gbk decode fail", Response: res, Request: req, Cause: err}
		}
		return safeJSONParse(text, false, res, req)
	}

	switch o.ResponseType {
	case "", "json":
		return safeJSONParse(res.Body, o.ThrowErrIfParseFail, res, req)
	case "text":
		return res.Text(), nil
	case "blob", "arrayBuffer":
		return append([]byte(nil), res.Body...), nil
	}
	return nil, &ResponseError{Type: ErrorTypeParse, Message: "responseType not support", Response: res, Request: req}
}

// safeJSONParse decodes data as JSON. When it does not parse, the raw text
// is returned unless throwErr is set.
func safeJSONParse(data []byte, throwErr bool, res *Response, req *Request) (interface{}, error) {
	var v interface{}
	err := json.Unmarshal(data, &v)
	if err == nil {
		return v, nil
	}
	if throwErr {
		return nil, &ResponseError{
			Type:     ErrorTypeParse,
			Message:  "JSON.parse fail",
			Response: res,
			Data:     string(data),
			Request:  req,
			Cause:    err,
		}
	}
	return string(data), nil
}
