package pstream

import "io"

// CutoffStream emits at most cutoff bytes from inner, then EOF, without
// consuming anything past that boundary. A subsequent CutoffStream built
// over the same inner resumes exactly where this one stopped, which is
// what lets chunked upload split one inbound stream into fixed-size parts
// without buffering the whole body.
type CutoffStream struct {
	inner     io.Reader
	remaining int64
	cutoff    int64
}

var _ Reader = (*CutoffStream)(nil)

func NewCutoffStream(inner io.Reader, cutoff int64) *CutoffStream {
	return &CutoffStream{inner: inner, remaining: cutoff, cutoff: cutoff}
}

func (s *CutoffStream) Read(p []byte) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > s.remaining {
		p = p[:s.remaining]
	}
	n, err := s.inner.Read(p)
	s.remaining -= int64(n)
	if err == nil && s.remaining <= 0 {
		err = io.EOF
	}
	return n, err
}

func (s *CutoffStream) Size() *int64 { return Sized(s.cutoff) }

func (s *CutoffStream) AtEOF() bool { return s.remaining <= 0 }

// Consumed reports how many of the cutoff bytes were actually emitted
// before the inner stream ran dry (the final, short chunk case).
func (s *CutoffStream) Consumed() int64 { return s.cutoff - s.remaining }
