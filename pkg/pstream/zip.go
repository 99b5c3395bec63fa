package pstream

import (
	"archive/zip"
	"io"
)

// ZipEntry is one (name, content) pair fed to a ZipStreamReader.
type ZipEntry struct {
	Name   string
	Stream Reader
}

// ZipEntryIterator supplies entries to a ZipStreamReader one at a time,
// mirroring the original's async generator of (name, stream) pairs (the
// folder DFS walk lives in the provider package; this interface is all
// ZipStreamReader depends on). Next returns io.EOF once exhausted.
type ZipEntryIterator interface {
	Next() (ZipEntry, error)
}

// sliceIterator adapts a fixed slice of entries to ZipEntryIterator, for
// callers (and tests) that already have the full entry list in hand.
type sliceIterator struct {
	entries []ZipEntry
	idx     int
}

func NewSliceIterator(entries []ZipEntry) ZipEntryIterator {
	return &sliceIterator{entries: entries}
}

func (s *sliceIterator) Next() (ZipEntry, error) {
	if s.idx >= len(s.entries) {
		return ZipEntry{}, io.EOF
	}
	e := s.entries[s.idx]
	s.idx++
	return e, nil
}

// ZipStreamReader streams a ZIP archive built on the fly from an iterator
// of entries: archive/zip.Writer already emits local-file-header + data +
// data-descriptor per entry followed by a central directory, computing
// CRCs and compressed sizes as it goes, so it is used directly behind an
// io.Pipe rather than reimplemented — this is the idiomatic Go shape for
// turning a "push" writer (zip.Writer only writes to an io.Writer) into
// the "pull" Reader every other stream in this package implements.
type ZipStreamReader struct {
	pr   *io.PipeReader
	size *int64 // always nil: compressed size is not known until drained
	eof  bool
}

var _ Reader = (*ZipStreamReader)(nil)

// NewZipStreamReader starts the background writer goroutine and returns a
// Reader over the resulting archive bytes.
func NewZipStreamReader(it ZipEntryIterator) *ZipStreamReader {
	pr, pw := io.Pipe()
	go func() {
		zw := zip.NewWriter(pw)
		for {
			entry, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			w, err := zw.Create(entry.Name)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			_, err = io.Copy(w, entry.Stream)
			if c, ok := entry.Stream.(io.Closer); ok {
				c.Close()
			}
			if err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		if err := zw.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()
	return &ZipStreamReader{pr: pr}
}

func (s *ZipStreamReader) Read(p []byte) (int, error) {
	n, err := s.pr.Read(p)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

func (s *ZipStreamReader) Size() *int64 { return s.size }

func (s *ZipStreamReader) AtEOF() bool { return s.eof }

// Close releases the pipe's reader side. Safe to call even if the stream
// was not fully drained (e.g. the inbound HTTP request was cancelled).
func (s *ZipStreamReader) Close() error { return s.pr.Close() }
