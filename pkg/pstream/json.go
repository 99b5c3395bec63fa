package pstream

import (
	"encoding/json"
	"io"
)

// JSONField is one entry of a JSONStream's ordered mapping. Value is
// either a JSON-marshalable literal or a Reader (or plain io.Reader),
// which is embedded as a JSON string and streamed in place rather than
// buffered.
type JSONField struct {
	Key   string
	Value any
}

// JSONStream renders an ordered mapping as streamed JSON bytes. Any field
// whose Value is a Reader has its framing ({, "key":", ",, "}) interleaved
// with the nested stream's bytes, so the whole object is produced without
// ever holding a stream-valued field fully in memory. The property holds
// for arbitrary read-chunk sizes, including one byte at a time, because
// JSONStream is itself built from a MultiStream of small literal segments
// and the caller-supplied Readers.
type JSONStream struct {
	inner *MultiStream
	eof   bool
}

var _ Reader = (*JSONStream)(nil)

// NewJSONStream builds the stream from an ordered field list.
func NewJSONStream(fields []JSONField) (*JSONStream, error) {
	var segs []Reader
	segs = append(segs, NewByteStream([]byte{'{'}))
	for i, f := range fields {
		if i > 0 {
			segs = append(segs, NewByteStream([]byte{','}))
		}
		keyJSON, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		segs = append(segs, NewByteStream(append(keyJSON, ':')))

		switch v := f.Value.(type) {
		case Reader:
			segs = append(segs, NewByteStream([]byte{'"'}))
			segs = append(segs, v)
			segs = append(segs, NewByteStream([]byte{'"'}))
		case io.Reader:
			segs = append(segs, NewByteStream([]byte{'"'}))
			segs = append(segs, asReader(v))
			segs = append(segs, NewByteStream([]byte{'"'}))
		default:
			valJSON, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			segs = append(segs, NewByteStream(valJSON))
		}
	}
	segs = append(segs, NewByteStream([]byte{'}'}))
	return &JSONStream{inner: NewMultiStream(segs...)}, nil
}

func (s *JSONStream) Read(p []byte) (int, error) {
	n, err := s.inner.Read(p)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

func (s *JSONStream) Size() *int64 { return s.inner.Size() }

func (s *JSONStream) AtEOF() bool { return s.eof }

// unknownSizeReader adapts a plain io.Reader (size unknown) to Reader.
type unknownSizeReader struct {
	io.Reader
	eof bool
}

func asReader(r io.Reader) Reader {
	if rr, ok := r.(Reader); ok {
		return rr
	}
	return &unknownSizeReader{Reader: r}
}

func (u *unknownSizeReader) Read(p []byte) (int, error) {
	n, err := u.Reader.Read(p)
	if err == io.EOF {
		u.eof = true
	}
	return n, err
}

func (u *unknownSizeReader) Size() *int64 { return nil }

func (u *unknownSizeReader) AtEOF() bool { return u.eof }
