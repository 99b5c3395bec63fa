package chunked

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/fileprovider/gateway/pkg/penvelope"
	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// Options parameterizes Upload's dispatch between a single PUT and the
// chunked state machine, mirroring S3CompatProvider's class attributes
// CHUNK_SIZE / CONTIGUOUS_UPLOAD_SIZE_LIMIT.
type Options struct {
	// ChunkSize is the byte size of every part except possibly the last.
	ChunkSize int64
	// ContiguousUploadSizeLimit: streams smaller than this skip the
	// multipart machine entirely.
	ContiguousUploadSizeLimit int64
	// VerifyChecksum enables the HashStreamWriter(md5)-against-ETag check
	// for a contiguous upload; disabled when server-side encryption is in
	// effect, since the ETag is then not the raw MD5 (spec.md §4.7
	// "Integrity").
	VerifyChecksum bool
	// PartConcurrency bounds how many parts may be in flight at once;
	// <=1 uploads strictly sequentially.
	PartConcurrency int
}

// ContiguousURLFunc builds the plain (non-multipart) PUT URL for a
// contiguous upload.
type ContiguousURLFunc func(ctx context.Context) (string, error)

// Upload implements spec.md §4.7's dispatch: a stream under
// ContiguousUploadSizeLimit goes out as one PUT; anything else drives the
// full create-session/upload-parts/complete state machine, aborting on any
// failure along the way. Returns the backend-reported ETag of the final
// object.
func Upload(ctx context.Context, envelope *penvelope.Envelope, contiguousURL ContiguousURLFunc, session *Session, stream pstream.Reader, opts Options) (string, error) {
	if size := stream.Size(); size != nil && *size < opts.ContiguousUploadSizeLimit {
		return contiguousUpload(ctx, envelope, contiguousURL, stream, opts.VerifyChecksum)
	}
	return chunkedUpload(ctx, session, stream, opts)
}

// contiguousUpload implements S3CompatProvider._contiguous_upload: a single
// PUT, optionally verified against a running MD5 digest.
func contiguousUpload(ctx context.Context, envelope *penvelope.Envelope, urlFn ContiguousURLFunc, stream pstream.Reader, verifyChecksum bool) (string, error) {
	var body pstream.Reader = stream
	var hw *pstream.HashStreamWriter
	if verifyChecksum {
		hw = pstream.NewHashStreamWriter(stream, md5.New())
		body = hw
	}

	headers := http.Header{}
	if size := stream.Size(); size != nil {
		headers.Set("Content-Length", strconv.FormatInt(*size, 10))
	}

	resp, err := envelope.Do(ctx, &penvelope.Request{
		Method:  http.MethodPut,
		URLFn:   func(ctx context.Context) (string, error) { return urlFn(ctx) },
		Body:    body,
		Headers: headers,
		Expects: []int{200, 201},
		Throws:  perr.OpUpload,
		Retry:   0,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	etag := trimETag(resp.Header.Get("ETag"))
	if verifyChecksum && hw.HexDigest() != etag {
		return "", perr.UploadChecksumMismatch("")
	}
	return etag, nil
}

// chunkedUpload implements S3CompatProvider._chunked_upload: create the
// session, split stream into ChunkSize parts via CutoffStream, upload them
// (optionally with bounded concurrency), complete, and abort on any
// failure along the way.
func chunkedUpload(ctx context.Context, session *Session, stream pstream.Reader, opts Options) (string, error) {
	if err := session.CreateSession(ctx); err != nil {
		return "", err
	}

	parts, uploadErr := uploadAllParts(ctx, session, stream, opts)
	if uploadErr != nil {
		abortMsg := "the upload could not be completed"
		if abortErr := session.Abort(ctx); abortErr != nil {
			abortMsg += "; the abort action also failed to clean up the temporary parts generated during the upload, manual cleanup may be required"
		}
		return "", fmt.Errorf("chunked: %s: %w", abortMsg, uploadErr)
	}

	return session.Complete(ctx, parts)
}

// uploadAllParts splits stream into ChunkSize-sized CutoffStreams and
// uploads each as a part, 1-indexed. Parts are always assigned a
// monotonically increasing number even when PartConcurrency > 1 lets
// their PUTs complete out of order (spec.md §5 "Ordering guarantees").
func uploadAllParts(ctx context.Context, session *Session, stream pstream.Reader, opts Options) ([]Part, error) {
	if opts.PartConcurrency <= 1 {
		return uploadPartsSequential(ctx, session, stream, opts.ChunkSize)
	}
	return uploadPartsConcurrent(ctx, session, stream, opts)
}

func uploadPartsSequential(ctx context.Context, session *Session, stream pstream.Reader, chunkSize int64) ([]Part, error) {
	var parts []Part
	for number := 1; ; number++ {
		cutoff := pstream.NewCutoffStream(stream, chunkSize)
		buf, err := drainToMemory(cutoff)
		if err != nil {
			return nil, err
		}
		if len(buf) == 0 {
			break
		}
		part, err := session.UploadPart(ctx, number, pstream.NewByteStream(buf), int64(len(buf)))
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
		if int64(len(buf)) < chunkSize {
			// the inner stream ran dry before filling this chunk: done.
			break
		}
	}
	return parts, nil
}

// uploadPartsConcurrent fans out part uploads up to PartConcurrency. Chunks
// must still be sliced off the single inbound stream in order (a
// CutoffStream is not safe to read from two goroutines at once), so the
// slicing stays sequential; only the network round-trip for each part
// happens concurrently.
func uploadPartsConcurrent(ctx context.Context, session *Session, stream pstream.Reader, opts Options) ([]Part, error) {
	sem := semaphore.NewWeighted(int64(opts.PartConcurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var parts []Part
	var firstErr error

	for number := 1; ; number++ {
		cutoff := pstream.NewCutoffStream(stream, opts.ChunkSize)
		buf, err := drainToMemory(cutoff)
		if err != nil {
			return nil, err
		}
		consumed := int64(len(buf))
		if consumed == 0 {
			break
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		number, buf := number, buf
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			part, err := session.UploadPart(ctx, number, pstream.NewByteStream(buf), int64(len(buf)))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			parts = append(parts, part)
		}()

		if consumed < opts.ChunkSize {
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return parts, nil
}

func drainToMemory(r pstream.Reader) ([]byte, error) {
	buf := make([]byte, 0)
	tmp := make([]byte, 32*1024)
	for {
		n, err := r.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return nil, err
		}
	}
}
