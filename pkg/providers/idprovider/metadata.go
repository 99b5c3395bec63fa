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

// driveItem is the wire shape of a single Graph-style drive item, trimmed
// to the fields this provider actually consumes.
type driveItem struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Size                 int64       `json:"size"`
	ETag                 string      `json:"eTag"`
	LastModifiedDateTime string      `json:"lastModifiedDateTime"`
	Folder               *struct{}   `json:"folder,omitempty"`
	File                 *driveFile  `json:"file,omitempty"`
	Children             []driveItem `json:"children,omitempty"`
	ContentDownloadURL   string      `json:"@content.downloadUrl,omitempty"`
	Deleted              *struct{}   `json:"deleted,omitempty"`
}

type driveFile struct {
	MimeType string `json:"mimeType"`
}

type childrenResponse struct {
	Value []driveItem `json:"value"`
}

func (p *Provider) getItem(ctx context.Context, id string, expandChildren bool) (*driveItem, error) {
	u := p.itemURL(id)
	if expandChildren {
		u += "?expand=children"
	}
	resp, err := p.envelope.Do(ctx, &penvelope.Request{
		Method: http.MethodGet, URL: u,
		Expects: []int{200}, Throws: perr.OpMetadata,
	})
	if err != nil {
		return nil, mapIDErr(err, id)
	}
	defer resp.Body.Close()

	var item driveItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	if item.Deleted != nil {
		return nil, perr.NotFound(id)
	}
	return &item, nil
}

func (p *Provider) listChildren(ctx context.Context, id string) ([]driveItem, error) {
	resp, err := p.envelope.Do(ctx, &penvelope.Request{
		Method: http.MethodGet, URL: p.itemURL(id, "children"),
		Expects: []int{200}, Throws: perr.OpMetadata,
	})
	if err != nil {
		return nil, mapIDErr(err, id)
	}
	defer resp.Body.Close()

	var out childrenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

func mapIDErr(err error, ref string) error {
	if perr.IsNotFound(err) {
		return perr.NotFound(ref)
	}
	return err
}

// ValidateV1Path is strict: the id must resolve and the trailing-slash
// convention must match the resolved item's kind.
func (p *Provider) ValidateV1Path(ctx context.Context, raw string) (ppath.Path, error) {
	candidate, err := p.ValidatePath(ctx, raw)
	if err != nil {
		return ppath.Path{}, err
	}
	if candidate.ID() == "" && !candidate.IsRoot() {
		return ppath.Path{}, perr.NotFound(raw)
	}
	item, err := p.getItem(ctx, candidate.ID(), false)
	if err != nil {
		return ppath.Path{}, err
	}
	if (item.Folder != nil) != candidate.IsDir() {
		return ppath.Path{}, perr.NotFound(raw)
	}
	return candidate, nil
}

// RevalidatePath resolves name's id as a child of base.
func (p *Provider) RevalidatePath(ctx context.Context, base ppath.Path, name string, folder bool) (ppath.Path, error) {
	child, err := p.findChild(ctx, base.ID(), name)
	if err != nil {
		return base.Child(name, "", folder), nil
	}
	return base.Child(name, child.id, folder), nil
}

// Metadata returns the single file's attributes, or the full child
// listing of a folder, via the item's id.
func (p *Provider) Metadata(ctx context.Context, path ppath.Path) ([]pmeta.Metadata, error) {
	id := path.ID()
	if id == "" {
		if path.IsRoot() {
			id = p.rootID
		} else {
			return nil, perr.NotFound(path.MaterializedPath())
		}
	}

	if path.IsFile() {
		item, err := p.getItem(ctx, id, false)
		if err != nil {
			return nil, err
		}
		return []pmeta.Metadata{itemToFile(p.name, path.MaterializedPath(), item)}, nil
	}

	item, err := p.getItem(ctx, id, true)
	if err != nil {
		return nil, err
	}

	children := make([]pmeta.Metadata, 0, len(item.Children))
	for _, c := range item.Children {
		childPath := joinPath(path.MaterializedPath(), c.Name, c.Folder != nil)
		if c.Folder != nil {
			children = append(children, &pmeta.Folder{
				Provider: p.name, Name_: c.Name, Path_: c.ID, Materialized: childPath,
			})
			continue
		}
		children = append(children, itemToFile(p.name, childPath, &c))
	}
	return children, nil
}

func itemToFile(providerName, mp string, item *driveItem) *pmeta.File {
	f := &pmeta.File{
		Provider: providerName, Name_: item.Name, Path_: item.ID, Materialized: mp,
		RawETag: item.ETag, Size: &item.Size, Modified: item.LastModifiedDateTime,
	}
	if item.File != nil && item.File.MimeType != "" {
		ct := item.File.MimeType
		f.ContentType = &ct
	}
	return f
}

func joinPath(parentMP, name string, folder bool) string {
	out := parentMP
	if out != "/" {
		out += "/"
	}
	out += name
	if folder {
		out += "/"
	}
	return out
}
