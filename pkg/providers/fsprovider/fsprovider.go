// Package fsprovider implements provider.Provider over gocloud.dev/blob:
// local filesystem (file://), in-memory (mem://), and any other registered
// blob driver, all addressed by materialized path alone — a flat-namespace
// backend where folders are synthetic, exactly as spec.md §4.8 describes
// for object-store-shaped backends.
package fsprovider

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
)

// folderMarker is a zero-byte object stored at "<folder-key>/" + this
// suffix so an otherwise empty folder still has a listable key, mirroring
// the teacher's phantom-directory handling in pkg/backend/blob.go's
// isRealObject (there, an empty real object vs. a prefix with children;
// here, an explicit marker avoids re-deriving that distinction for the
// zero-children case).
const folderMarker = ".keep"

// Provider adapts a gocloud.dev/blob.Bucket to provider.Provider.
type Provider struct {
	name         string
	bucket       *blob.Bucket
	bucketPrefix string
}

var _ provider.Provider = (*Provider)(nil)

// New opens bucketURL (e.g. "mem://", "file:///srv/data") via gocloud.dev/blob
// and names the resulting provider name, matching the teacher's
// NewBlobBackend/NewFileBackend constructors.
func New(ctx context.Context, name, bucketURL string) (*Provider, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("fsprovider: %w", err)
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("fsprovider: opening bucket %q: %w", bucketURL, err)
	}
	prefix := ""
	if u.Scheme != "file" {
		prefix = strings.Trim(u.Path, "/")
	}
	return &Provider{name: name, bucket: bucket, bucketPrefix: prefix}, nil
}

// Close releases the underlying bucket handle.
func (p *Provider) Close() error { return p.bucket.Close() }

func (p *Provider) Name() string { return p.name }

// CanDuplicateNames is false: a flat-namespace backend cannot have a file
// and folder of the same key coexist (the folder is just a key prefix).
func (p *Provider) CanDuplicateNames() bool { return false }

// CanIntraCopy/CanIntraMove report true only against another fsprovider
// backed by the same bucket, where bucket.Copy is a real server-side
// rewrite rather than a download+upload round trip.
func (p *Provider) CanIntraCopy(other provider.Provider, _ *ppath.Path) bool {
	o, ok := other.(*Provider)
	return ok && o.bucket == p.bucket
}

func (p *Provider) CanIntraMove(other provider.Provider, path *ppath.Path) bool {
	return p.CanIntraCopy(other, path)
}

func (p *Provider) SharesStorageRoot(other provider.Provider) bool {
	o, ok := other.(*Provider)
	return ok && o.bucket == p.bucket
}

// ValidatePath is permissive: this backend addresses everything by
// materialized path, so there is no identifier projection to resolve.
func (p *Provider) ValidatePath(ctx context.Context, raw string) (ppath.Path, error) {
	return ppath.New(raw), nil
}

// RevalidatePath resolves name as a child of base; a path-addressed
// backend has nothing further to look up.
func (p *Provider) RevalidatePath(ctx context.Context, base ppath.Path, name string, folder bool) (ppath.Path, error) {
	return base.Child(name, "", folder), nil
}

func (p *Provider) PathFromMetadata(parent ppath.Path, md pmeta.Metadata) ppath.Path {
	return parent.Child(md.Name(), "", md.Kind() == pmeta.KindFolder)
}

// key maps a path's materialized projection to a blob storage key: strip
// the leading slash and prepend the bucket prefix (the sub-path carried in
// the bucket URL itself, e.g. "s3://bucket/prefix").
func (p *Provider) key(mp string) string {
	k := strings.TrimPrefix(mp, "/")
	if p.bucketPrefix == "" {
		return k
	}
	if k == "" {
		return p.bucketPrefix + "/"
	}
	return p.bucketPrefix + "/" + k
}

func (p *Provider) pathFromKey(k string) string {
	k = strings.TrimPrefix(k, p.bucketPrefix+"/")
	if !strings.HasPrefix(k, "/") {
		k = "/" + k
	}
	return path.Clean(k)
}
