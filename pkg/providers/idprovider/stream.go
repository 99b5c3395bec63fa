package idprovider

import (
	"context"
	"net/http"

	"github.com/fileprovider/gateway/pkg/penvelope"
	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// Download mirrors the OneDrive provider's two-step fetch: resolve the
// item's current content-download URL (or a specific revision's, see
// revisions.go), then GET it with an optional byte range.
func (p *Provider) Download(ctx context.Context, path ppath.Path, opts provider.DownloadOpts) (pstream.Reader, error) {
	id := path.ID()
	if id == "" {
		return nil, perr.NotFound(path.MaterializedPath())
	}

	downloadURL := p.itemURL(id, "content")
	if opts.Revision != "" && opts.Revision != pmeta.RevisionLatestSentinel {
		u, err := p.revisionDownloadURL(ctx, id, opts.Revision)
		if err != nil {
			return nil, err
		}
		downloadURL = u
	} else {
		item, err := p.getItem(ctx, id, false)
		if err != nil {
			return nil, err
		}
		if item.ContentDownloadURL != "" {
			downloadURL = item.ContentDownloadURL
		}
	}

	req := &penvelope.Request{
		Method: http.MethodGet, URL: downloadURL,
		RangeLo: opts.RangeLo, RangeHi: opts.RangeHi,
		Expects: []int{200, 206}, Throws: perr.OpDownload,
	}
	resp, err := p.envelope.Do(ctx, req)
	if err != nil {
		return nil, mapIDErr(err, path.MaterializedPath())
	}

	var size *int64
	if resp.ContentLength >= 0 {
		n := resp.ContentLength
		size = &n
	}
	return pstream.NewResponseStreamReader(resp.Body, size, resp.Header.Get("Content-Type"), resp.StatusCode == 206), nil
}
