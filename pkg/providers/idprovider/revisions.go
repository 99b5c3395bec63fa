package idprovider

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fileprovider/gateway/pkg/penvelope"
	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
)

type versionItem struct {
	ID                   string `json:"id"`
	LastModifiedDateTime string `json:"lastModifiedDateTime"`
	ContentDownloadURL   string `json:"@content.downloadUrl,omitempty"`
}

type versionsResponse struct {
	Value []versionItem `json:"value"`
}

func (p *Provider) versions(ctx context.Context, id string) ([]versionItem, error) {
	resp, err := p.envelope.Do(ctx, &penvelope.Request{
		Method: http.MethodGet, URL: p.itemURL(id, "versions"),
		Expects: []int{200}, Throws: perr.OpRevisions,
	})
	if err != nil {
		return nil, mapIDErr(err, id)
	}
	defer resp.Body.Close()

	var out versionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

func (p *Provider) revisionDownloadURL(ctx context.Context, id, revision string) (string, error) {
	items, err := p.versions(ctx, id)
	if err != nil {
		return "", err
	}
	for _, v := range items {
		if v.ID == revision {
			if v.ContentDownloadURL == "" {
				return "", perr.UnexportableFileType(id)
			}
			return v.ContentDownloadURL, nil
		}
	}
	return "", perr.NotFound(id + "@" + revision)
}

// Revisions mirrors OneDriveProvider.revisions: list the item's version
// history, most recent first, in the order its versions feed returns it.
func (p *Provider) Revisions(ctx context.Context, path ppath.Path) ([]pmeta.Metadata, error) {
	id := path.ID()
	if id == "" {
		return nil, perr.NotFound(path.MaterializedPath())
	}
	items, err := p.versions(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]pmeta.Metadata, 0, len(items))
	for i, v := range items {
		version := v.ID
		if i == 0 {
			version = pmeta.RevisionLatestSentinel
		}
		out = append(out, &pmeta.Revision{
			Provider: p.name, Path_: path.MaterializedPath(),
			VersionIdentifier: "version_id", Version: version, Modified: v.LastModifiedDateTime,
		})
	}
	return out, nil
}
