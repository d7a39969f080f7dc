package onionfetch

// Compressor is the interface for cached snapshot compressors
type Compressor interface {

	// Compress returns a compressed clone of a snapshot prior to being saved in the cache
	Compress(*Response) *Response

	// Expand decompresses a snapshot's body (destructively)
	Expand(*Response) *Response
}
