package s3provider

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// objectReader adapts GetObjectOutput.Body to pstream.Reader.
type objectReader struct {
	body io.ReadCloser
	size *int64
	read int64
}

func (o *objectReader) Read(p []byte) (int, error) {
	n, err := o.body.Read(p)
	o.read += int64(n)
	return n, err
}

func (o *objectReader) Close() error { return o.body.Close() }
func (o *objectReader) Size() *int64 { return o.size }
func (o *objectReader) AtEOF() bool {
	if o.size == nil {
		return false
	}
	return o.read >= *o.size
}

var _ pstream.Reader = (*objectReader)(nil)

// Download mirrors the teacher's GetObject, adding the HTTP Range header
// form S3 expects ("bytes=lo-hi") when a partial read is requested.
func (p *Provider) Download(ctx context.Context, path ppath.Path, opts provider.DownloadOpts) (pstream.Reader, error) {
	mp := path.MaterializedPath()
	if opts.Revision != "" && opts.Revision != "latest" {
		return nil, perr.UnsupportedOperation("s3provider does not expose historical object versions")
	}

	in := &s3.GetObjectInput{Bucket: aws.String(p.bucket), Key: aws.String(p.key(mp))}
	if opts.RangeLo != nil || opts.RangeHi != nil {
		var lo, hi int64
		if opts.RangeLo != nil {
			lo = *opts.RangeLo
		}
		rangeHeader := fmt.Sprintf("bytes=%d-", lo)
		if opts.RangeHi != nil {
			hi = *opts.RangeHi
			rangeHeader = fmt.Sprintf("bytes=%d-%d", lo, hi)
		}
		in.Range = aws.String(rangeHeader)
	}

	out, err := p.client.GetObject(ctx, in)
	if err != nil {
		return nil, mapErr(err, mp)
	}
	return &objectReader{body: out.Body, size: out.ContentLength}, nil
}
