package onionfetch

import (
	"errors"
	"fmt"
)

// Error types carried in RequestError.Type and ResponseError.Type
const (
	ErrorTypeRequest     = "RequestError"
	ErrorTypeTimeout     = "Timeout"
	ErrorTypeContextDone = "ContextDone"
	ErrorTypeResponse    = "ResponseError"
	ErrorTypeHTTP        = "HttpError"
	ErrorTypeParse       = "ParseError"
)

var (
	// ErrNextCalledMultiple is returned when a middleware calls next more than once
	ErrNextCalledMultiple = errors.New("onionfetch: next() should not be called multiple times in one middleware")

	// ErrInvalidMiddleware is returned by Compose when the sequence contains a nil middleware
	ErrInvalidMiddleware = errors.New("onionfetch: middleware must not be nil")

	// ErrInvalidInterceptor is returned when registering a nil interceptor
	ErrInvalidInterceptor = errors.New("onionfetch: interceptor must not be nil")

	// ErrNoTransport is returned by the core fetch middleware when no transport is configured
	ErrNoTransport = errors.New("onionfetch: no transport configured")

	// ErrNilResponse is returned when a response interceptor returns no response
	ErrNilResponse = errors.New("onionfetch: response interceptor returned no response")
)

// RequestError is a transport level failure: timeout, network error
// or the caller's context ending before the transport settled.
type RequestError struct {
	Type    string
	Message string
	Request *Request
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Is matches any *RequestError with the same Type
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	return ok && t.Type == e.Type
}

// ResponseError is a response level failure: a status outside 2xx
// or a body that could not be decoded.
type ResponseError struct {
	Type     string
	Message  string
	Response *Response
	Data     interface{}
	Request  *Request
	Cause    error
}

func (e *ResponseError) Error() string {
	msg := e.Message
	if msg == "" && e.Response != nil {
		msg = e.Response.StatusText
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// Is matches any *ResponseError with the same Type
func (e *ResponseError) Is(target error) bool {
	t, ok := target.(*ResponseError)
	return ok && t.Type == e.Type
}

// AnnotatedError wraps a failure that is neither a RequestError nor a
// ResponseError with the request and response it occurred on, so that an
// ErrorHandler always has full context.
type AnnotatedError struct {
	Err      error
	Request  *Request
	Response interface{}
}

func (e *AnnotatedError) Error() string {
	return e.Err.Error()
}

func (e *AnnotatedError) Unwrap() error {
	return e.Err
}

// PanicError is returned in place of a panic raised inside a middleware
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("onionfetch: middleware panic: %v", e.Value)
}

// IsTimeout reports whether err is, or wraps, a timeout RequestError
func IsTimeout(err error) bool {
	return errors.Is(err, &RequestError{Type: ErrorTypeTimeout})
}

// IsHTTPError reports whether err is, or wraps, a non-2xx ResponseError
func IsHTTPError(err error) bool {
	return errors.Is(err, &ResponseError{Type: ErrorTypeHTTP})
}

func annotate(err error, req *Request, res interface{}) error {
	var reqErr *RequestError
	var resErr *ResponseError
	var annotated *AnnotatedError
	if errors.As(err, &reqErr) || errors.As(err, &resErr) || errors.As(err, &annotated) {
		return err
	}
	return &AnnotatedError{Err: err, Request: req, Response: res}
}
