package idprovider

import (
	"context"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// Upload, Delete, CreateFolder, IntraCopy and IntraMove all reject with
// ReadOnlyProvider: the upstream this backend models (OneDriveProvider in
// the original) exposes no write verbs, matching its own upload/delete/
// move stubs.
func (p *Provider) Upload(ctx context.Context, path ppath.Path, stream pstream.Reader, conflict provider.Conflict) (pmeta.Metadata, bool, error) {
	return nil, false, perr.ReadOnlyProvider(p.name)
}

func (p *Provider) Delete(ctx context.Context, path ppath.Path, confirmDelete bool) error {
	return perr.ReadOnlyProvider(p.name)
}

func (p *Provider) CreateFolder(ctx context.Context, path ppath.Path) (pmeta.Metadata, error) {
	return nil, perr.ReadOnlyProvider(p.name)
}

func (p *Provider) IntraCopy(ctx context.Context, dst provider.Provider, src ppath.Path, dstPath ppath.Path) (pmeta.Metadata, bool, error) {
	return nil, false, perr.ReadOnlyProvider(p.name)
}

func (p *Provider) IntraMove(ctx context.Context, dst provider.Provider, src ppath.Path, dstPath ppath.Path) (pmeta.Metadata, bool, error) {
	return nil, false, perr.ReadOnlyProvider(p.name)
}
