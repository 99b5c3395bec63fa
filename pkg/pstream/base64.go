package pstream

import (
	"encoding/base64"
	"io"
)

// Base64EncodeStream encodes inner's bytes as they are read, so the
// consumer never needs the full payload in memory. Because base64 encodes
// in 3-byte groups, partial trailing bytes are held back between Read
// calls and only the final group (once inner hits EOF) is padded, so the
// stream is correct under arbitrary chunking of the *output*, including
// one byte at a time.
type Base64EncodeStream struct {
	inner     io.Reader
	size      *int64
	readBuf   [3072]byte // must stay a multiple of 3
	leftover  [2]byte
	nLeftover int
	outBuf    []byte // encoded bytes not yet returned to the caller
	innerDone bool
	eof       bool
}

var _ Reader = (*Base64EncodeStream)(nil)

// NewBase64EncodeStream wraps inner. If inner reports a known size, the
// encoded size is computed as ceil(size/3)*4, matching the exact length
// of the base64 output.
func NewBase64EncodeStream(inner Reader) *Base64EncodeStream {
	s := &Base64EncodeStream{inner: inner}
	if sz := inner.Size(); sz != nil {
		encLen := ((*sz + 2) / 3) * 4
		s.size = Sized(encLen)
	}
	return s
}

func (s *Base64EncodeStream) fill() error {
	for len(s.outBuf) == 0 && !s.innerDone {
		n, err := s.inner.Read(s.readBuf[:])
		total := s.nLeftover + n
		group := make([]byte, 0, total)
		group = append(group, s.leftover[:s.nLeftover]...)
		group = append(group, s.readBuf[:n]...)
		s.nLeftover = 0

		if err != nil && err != io.EOF {
			return err
		}
		done := err == io.EOF

		encodable := len(group)
		if !done {
			// Hold back any bytes that don't form a complete 3-byte group
			// until more data (or EOF) arrives.
			rem := encodable % 3
			encodable -= rem
			s.nLeftover = copy(s.leftover[:], group[encodable:])
		}
		if encodable > 0 {
			encoded := make([]byte, base64.StdEncoding.EncodedLen(encodable))
			base64.StdEncoding.Encode(encoded, group[:encodable])
			s.outBuf = append(s.outBuf, encoded...)
		}
		if done {
			s.innerDone = true
		}
	}
	return nil
}

func (s *Base64EncodeStream) Read(p []byte) (int, error) {
	if err := s.fill(); err != nil {
		return 0, err
	}
	if len(s.outBuf) == 0 {
		s.eof = true
		return 0, io.EOF
	}
	n := copy(p, s.outBuf)
	s.outBuf = s.outBuf[n:]
	return n, nil
}

func (s *Base64EncodeStream) Size() *int64 { return s.size }

func (s *Base64EncodeStream) AtEOF() bool { return s.eof }
