package onionfetch

import (
	"bytes"
	"compress/gzip"
	"io"
)

// CompressorGzip is a gzip compressor
type CompressorGzip struct {
}

// Compress clones the supplied snapshot
// This causes a memcopy of the response body, slowing down cache writes
func (c CompressorGzip) Compress(res *Response) *Response {
	newres := res.Clone()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(res.Body)
	zw.Close()
	newres.Body = buf.Bytes()
	return newres
}

// Expand modifies the supplied snapshot
func (c CompressorGzip) Expand(res *Response) *Response {
	zr, err := gzip.NewReader(bytes.NewReader(res.Body))
	if err != nil {
		return res
	}
	defer zr.Close()
	if body, err := io.ReadAll(zr); err == nil {
		res.Body = body
	}
	return res
}
