package pstream

import "io"

// ResponseStreamReader adapts an upstream HTTP response body. size is
// supplied explicitly when the upstream omits Content-Length or reports
// it through a vendor-specific header (e.g. an object store's
// X-*-Content-Length); contentType mirrors the upstream's reported type;
// partial marks a 206 Partial Content response.
type ResponseStreamReader struct {
	body        io.ReadCloser
	size        *int64
	contentType string
	partial     bool
	eof         bool
}

var _ Reader = (*ResponseStreamReader)(nil)

func NewResponseStreamReader(body io.ReadCloser, size *int64, contentType string, partial bool) *ResponseStreamReader {
	return &ResponseStreamReader{body: body, size: size, contentType: contentType, partial: partial}
}

func (s *ResponseStreamReader) Read(p []byte) (int, error) {
	n, err := s.body.Read(p)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

func (s *ResponseStreamReader) Size() *int64 { return s.size }

func (s *ResponseStreamReader) AtEOF() bool { return s.eof }

func (s *ResponseStreamReader) ContentType() string { return s.contentType }

func (s *ResponseStreamReader) Partial() bool { return s.partial }

// Close releases the underlying response body. Callers must Close every
// ResponseStreamReader they obtain, even if they never fully read it.
func (s *ResponseStreamReader) Close() error { return s.body.Close() }

// RequestStreamReader adapts an inbound HTTP request body. size comes
// from the request's Content-Length, or nil when chunked/unknown.
type RequestStreamReader struct {
	body io.Reader
	size *int64
	eof  bool
}

var _ Reader = (*RequestStreamReader)(nil)

func NewRequestStreamReader(body io.Reader, contentLength int64) *RequestStreamReader {
	var size *int64
	if contentLength >= 0 {
		size = Sized(contentLength)
	}
	return &RequestStreamReader{body: body, size: size}
}

func (s *RequestStreamReader) Read(p []byte) (int, error) {
	n, err := s.body.Read(p)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

func (s *RequestStreamReader) Size() *int64 { return s.size }

func (s *RequestStreamReader) AtEOF() bool { return s.eof }
