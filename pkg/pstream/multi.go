package pstream

import "io"

// MultiStream concatenates streams in order, reading stream i to EOF
// before advancing to i+1. Size is the sum of all inner sizes if every one
// is known, else nil.
type MultiStream struct {
	streams []Reader
	idx     int
}

var _ Reader = (*MultiStream)(nil)

func NewMultiStream(streams ...Reader) *MultiStream {
	return &MultiStream{streams: streams}
}

func (s *MultiStream) Read(p []byte) (int, error) {
	for s.idx < len(s.streams) {
		n, err := s.streams[s.idx].Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			s.idx++
			continue
		}
		if err != nil {
			return 0, err
		}
	}
	return 0, io.EOF
}

func (s *MultiStream) Size() *int64 {
	var total int64
	for _, inner := range s.streams {
		sz := inner.Size()
		if sz == nil {
			return nil
		}
		total += *sz
	}
	return Sized(total)
}

func (s *MultiStream) AtEOF() bool { return s.idx >= len(s.streams) }
