package fsprovider

import (
	"context"
	"fmt"

	gcerrors "gocloud.dev/gcerrors"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// blobReader adapts *blob.Reader to pstream.Reader.
type blobReader struct {
	r    interface {
		Read([]byte) (int, error)
		Close() error
	}
	size *int64
	read int64
}

func (b *blobReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	return n, err
}

func (b *blobReader) Close() error { return b.r.Close() }

func (b *blobReader) Size() *int64 { return b.size }

func (b *blobReader) AtEOF() bool {
	if b.size == nil {
		return false
	}
	return b.read >= *b.size
}

var _ pstream.Reader = (*blobReader)(nil)

// Download opens a live reader over path's object, using a ranged read
// when opts.RangeLo/RangeHi are set (spec.md §4.3 "partial content").
// gocloud.dev/blob has no version history, so a non-empty opts.Revision
// other than RevisionLatestSentinel is rejected.
func (p *Provider) Download(ctx context.Context, path ppath.Path, opts provider.DownloadOpts) (pstream.Reader, error) {
	mp := path.MaterializedPath()
	if opts.Revision != "" && opts.Revision != "latest" {
		return nil, perr.UnsupportedOperation("fsprovider does not keep file revisions")
	}

	key := p.key(mp)

	if opts.RangeLo == nil && opts.RangeHi == nil {
		r, err := p.bucket.NewReader(ctx, key, nil)
		if err != nil {
			return nil, mapBlobErr(err, mp)
		}
		sz := r.Size()
		return &blobReader{r: r, size: &sz}, nil
	}

	var offset int64
	if opts.RangeLo != nil {
		offset = *opts.RangeLo
	}
	length := int64(-1)
	if opts.RangeHi != nil {
		length = *opts.RangeHi - offset + 1
	}
	r, err := p.bucket.NewRangeReader(ctx, key, offset, length, nil)
	if err != nil {
		return nil, mapBlobErr(err, mp)
	}
	sz := r.Size()
	return &blobReader{r: r, size: &sz}, nil
}

func mapBlobErr(err error, ref string) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return perr.NotFound(ref)
	}
	return fmt.Errorf("fsprovider: %q: %w", ref, err)
}
