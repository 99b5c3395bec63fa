package s3provider_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileprovider/gateway/pkg/provider"
	"github.com/fileprovider/gateway/pkg/providers/s3provider"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// fakeS3 is a minimal in-memory fake of the S3 object API surface the
// provider drives: single-part multipart upload, head, get and delete.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		key := r.URL.Path

		switch {
		case r.Method == http.MethodPost && q.Has("uploads"):
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><InitiateMultipartUploadResult><UploadId>up-1</UploadId></InitiateMultipartUploadResult>`)

		case r.Method == http.MethodPut && q.Get("partNumber") != "":
			body, _ := io.ReadAll(r.Body)
			f.mu.Lock()
			f.objects[key] = body
			f.mu.Unlock()
			w.Header().Set("ETag", `"part-etag"`)
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodPost && q.Get("uploadId") != "":
			io.ReadAll(r.Body)
			w.Header().Set("ETag", `"final-etag"`)
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><CompleteMultipartUploadResult><ETag>&quot;final-etag&quot;</ETag></CompleteMultipartUploadResult>`)

		case r.Method == http.MethodHead:
			f.mu.Lock()
			body, ok := f.objects[key]
			f.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("ETag", `"final-etag"`)
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
			w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodGet && !q.Has("list-type"):
			f.mu.Lock()
			body, ok := f.objects[key]
			f.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
			w.WriteHeader(http.StatusOK)
			w.Write(body)

		case r.Method == http.MethodDelete:
			f.mu.Lock()
			delete(f.objects, key)
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><ListBucketResult></ListBucketResult>`)
		}
	}
}

func newTestProvider(t *testing.T, server *httptest.Server) *s3provider.Provider {
	t.Helper()
	p, err := s3provider.New(context.Background(), "s3", "test-bucket", "us-east-1", func(o *s3.Options) {
		o.BaseEndpoint = &server.URL
		o.Credentials = credentials.NewStaticCredentialsProvider("x", "y", "")
	})
	require.NoError(t, err)
	return p
}

func Test_Upload_Download_Delete_Lifecycle(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	fake := newFakeS3()
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	p := newTestProvider(t, server)

	md, created, err := p.Upload(ctx, ppath.New("/hello.txt"), pstream.NewStringStream("hello"), provider.ConflictReplace)
	require.NoError(err)
	assert.True(created)
	assert.Equal("hello.txt", md.Name())

	r, err := p.Download(ctx, ppath.New("/hello.txt"), provider.DownloadOpts{})
	require.NoError(err)
	defer r.Close()
	body, _ := io.ReadAll(r)
	assert.Equal("hello", string(body))

	require.NoError(p.Delete(ctx, ppath.New("/hello.txt"), false))
}
