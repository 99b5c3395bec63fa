// Package pstream implements the lazy, composable byte-stream pipeline
// that moves data between an inbound HTTP request, optional in-flight
// transformations (hashing, base64, cutoff, JSON framing, zip assembly),
// and a backend, without ever materializing a whole file in memory.
//
// Every stream in this package satisfies Reader: a plain io.Reader plus a
// nullable Size and an AtEOF check. Go's blocking io.Reader already gives
// the "lazy pull" semantics the original's coroutine-based streams used
// async read(n) for, so wrappers here compose the same way io.Reader
// wrappers (bufio, io.LimitReader, ...) normally do in Go: each wrapper
// owns exactly one inner Reader and is not safe for concurrent use.
package pstream

import "io"

// Reader is the stream contract every wrapper in this package implements.
type Reader interface {
	io.Reader

	// Size returns the stream's total length in bytes, or nil when the
	// length is not known until the stream is drained.
	Size() *int64

	// AtEOF reports whether the stream has been fully consumed.
	AtEOF() bool
}

// Sized constructs an *int64 for use as a Size() return value.
func Sized(n int64) *int64 {
	return &n
}

// ByteStream is an in-memory stream over a fixed byte slice.
type ByteStream struct {
	buf []byte
	pos int
}

var _ Reader = (*ByteStream)(nil)

// NewByteStream wraps buf as a Reader. The stream is single-pass; Read
// drains buf left to right.
func NewByteStream(buf []byte) *ByteStream {
	return &ByteStream{buf: buf}
}

// NewStringStream is a convenience constructor over a string's bytes,
// matching the original's StringStream.
func NewStringStream(s string) *ByteStream {
	return NewByteStream([]byte(s))
}

func (s *ByteStream) Read(p []byte) (int, error) {
	if s.pos >= len(s.buf) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += n
	return n, nil
}

func (s *ByteStream) Size() *int64 { return Sized(int64(len(s.buf))) }

func (s *ByteStream) AtEOF() bool { return s.pos >= len(s.buf) }
