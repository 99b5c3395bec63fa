// Package idprovider implements a read-only, identifier-addressed
// provider.Provider against a Microsoft Graph-style drive-items API: every
// folder and file is addressed by an opaque item id, a path's last segment
// may arrive without one (a name waiting to be resolved), and children are
// listed by requesting a parent id's "children" relationship. This is the
// id-based counterpart to pkg/providers/fsprovider and s3provider's
// path-addressed backends, grounded on the OneDrive backend's shape.
package idprovider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fileprovider/gateway/pkg/penvelope"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
)

// Provider is read-only: the upstream API this package models exposes no
// write verbs worth building a synthetic one for (see readonly.go).
type Provider struct {
	provider.ReadOnly
	name     string
	envelope *penvelope.Envelope
	baseURL  string
	rootID   string
}

var _ provider.Provider = (*Provider)(nil)

// New builds a Provider against baseURL (e.g. "https://graph.example.com/v1.0/me/drive")
// rooted at rootID (the upstream's sentinel for "the drive root" — "root"
// in the Graph API itself).
func New(name, baseURL, rootID string, envelope *penvelope.Envelope) *Provider {
	return &Provider{ReadOnly: provider.ReadOnly{ProviderName: name}, name: name, envelope: envelope, baseURL: strings.TrimSuffix(baseURL, "/"), rootID: rootID}
}

func (p *Provider) Name() string { return p.name }

// CanDuplicateNames mirrors the upstream's drive-item namespace: a file
// and folder may never share a name under the same parent.
func (p *Provider) CanDuplicateNames() bool { return false }

func (p *Provider) SharesStorageRoot(other provider.Provider) bool {
	o, ok := other.(*Provider)
	return ok && o.baseURL == p.baseURL && o.rootID == p.rootID
}

func (p *Provider) itemURL(id string, segments ...string) string {
	u := p.baseURL + "/items/" + url.PathEscape(id)
	if len(segments) > 0 {
		u += "/" + strings.Join(segments, "/")
	}
	return u
}

func (p *Provider) PathFromMetadata(parent ppath.Path, md pmeta.Metadata) ppath.Path {
	return parent.Child(md.Name(), md.Path(), md.Kind() == pmeta.KindFolder)
}

// ValidatePath resolves each segment's id by walking from rootID through
// the children listing, leaving the last segment's id empty if it is not
// found (the permissive contract: a not-yet-created destination name).
func (p *Provider) ValidatePath(ctx context.Context, raw string) (ppath.Path, error) {
	candidate := ppath.New(raw)
	if candidate.IsRoot() {
		return candidate.WithIdentifiers([]string{p.rootID}), nil
	}

	parentID := p.rootID
	ids := make([]string, len(candidate.Parts()))
	for i, part := range candidate.Parts() {
		last := i == len(candidate.Parts())-1
		child, err := p.findChild(ctx, parentID, part.Name)
		if err != nil {
			if !last {
				return ppath.Path{}, err
			}
			break
		}
		ids[i] = child.id
		parentID = child.id
	}
	return candidate.WithIdentifiers(ids), nil
}

type childRef struct {
	id     string
	folder bool
}

// findChild lists parentID's children and returns the one named name.
func (p *Provider) findChild(ctx context.Context, parentID, name string) (*childRef, error) {
	items, err := p.listChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Name == name {
			return &childRef{id: it.ID, folder: it.Folder != nil}, nil
		}
	}
	return nil, fmt.Errorf("idprovider: %q not found under %q", name, parentID)
}
