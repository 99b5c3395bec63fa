package pstream

import (
	"encoding/hex"
	"hash"
)

// HashStreamWriter is a side-channel writer attached to a read-stream: it
// is fed every chunk as read() produces it, so HexDigest is available once
// the stream has reached EOF. Used for end-to-end checksum verification of
// uploads (see pkg/chunked).
type HashStreamWriter struct {
	inner Reader
	h     hash.Hash
}

var _ Reader = (*HashStreamWriter)(nil)

// NewHashStreamWriter wraps inner, feeding every byte read through h.
func NewHashStreamWriter(inner Reader, h hash.Hash) *HashStreamWriter {
	return &HashStreamWriter{inner: inner, h: h}
}

func (s *HashStreamWriter) Read(p []byte) (int, error) {
	n, err := s.inner.Read(p)
	if n > 0 {
		s.h.Write(p[:n])
	}
	return n, err
}

func (s *HashStreamWriter) Size() *int64 { return s.inner.Size() }

func (s *HashStreamWriter) AtEOF() bool { return s.inner.AtEOF() }

// HexDigest returns the hex-encoded digest of everything read so far. Only
// meaningful once the stream has been fully drained.
func (s *HashStreamWriter) HexDigest() string {
	return hex.EncodeToString(s.h.Sum(nil))
}
