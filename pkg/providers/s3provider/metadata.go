package s3provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
)

func (p *Provider) ValidateV1Path(ctx context.Context, raw string) (ppath.Path, error) {
	candidate := ppath.New(raw)
	entries, err := p.Metadata(ctx, candidate)
	if err != nil {
		return ppath.Path{}, err
	}
	if candidate.IsFile() && (len(entries) != 1 || entries[0].Kind() != pmeta.KindFile) {
		return ppath.Path{}, perr.NotFound(candidate.MaterializedPath())
	}
	return candidate, nil
}

// Metadata mirrors the teacher's GetObjectMeta (HeadObject, for a file)
// and ListObjects (ListObjectsV2 with Delimiter "/", for a folder).
func (p *Provider) Metadata(ctx context.Context, path ppath.Path) ([]pmeta.Metadata, error) {
	mp := path.MaterializedPath()
	key := p.key(mp)

	if path.IsFile() {
		out, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(p.bucket), Key: aws.String(key),
		})
		if err != nil {
			return nil, mapErr(err, mp)
		}
		return []pmeta.Metadata{headToFile(p.name, path.Name(), mp, out)}, nil
	}

	prefix := strings.TrimSuffix(key, "/")
	if prefix != "" {
		prefix += "/"
	}

	if !path.IsRoot() {
		if ok, err := p.folderExists(ctx, prefix); err != nil {
			return nil, err
		} else if !ok {
			return nil, perr.NotFound(mp)
		}
	}

	var children []pmeta.Metadata
	var token *string
	for {
		out, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket: aws.String(p.bucket), Prefix: aws.String(prefix),
			Delimiter: aws.String("/"), ContinuationToken: token,
		})
		if err != nil {
			return nil, mapErr(err, mp)
		}
		for _, cp := range out.CommonPrefixes {
			childKey := aws.ToString(cp.Prefix)
			childPath := p.pathFromKey(childKey)
			children = append(children, &pmeta.Folder{
				Provider: p.name, Name_: childName(childPath), Path_: childPath, Materialized: childPath,
			})
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix || strings.HasSuffix(key, "/"+folderMarker) {
				continue
			}
			childPath := p.pathFromKey(key)
			children = append(children, objectToFile(p.name, childName(childPath), childPath, obj))
		}
		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })
	return children, nil
}

// folderExists probes for a marker object or any key under prefix,
// mirroring fsprovider's phantom-directory check for a flat namespace.
func (p *Provider) folderExists(ctx context.Context, prefix string) (bool, error) {
	if _, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket), Key: aws.String(prefix + folderMarker),
	}); err == nil {
		return true, nil
	}
	out, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket), Prefix: aws.String(prefix), MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("s3provider: probing folder %q: %w", prefix, err)
	}
	return len(out.Contents) > 0, nil
}

func childName(childPath string) string {
	trimmed := strings.TrimSuffix(childPath, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func headToFile(providerName, name, mp string, out *s3.HeadObjectOutput) *pmeta.File {
	f := &pmeta.File{
		Provider: providerName, Name_: name, Path_: mp, Materialized: mp,
		RawETag: strings.Trim(aws.ToString(out.ETag), `"`),
	}
	if out.ContentLength != nil {
		f.Size = out.ContentLength
	}
	if out.LastModified != nil {
		f.Modified = out.LastModified.UTC().Format("2006-01-02T15:04:05Z")
	}
	if out.ContentType != nil {
		ct := *out.ContentType
		f.ContentType = &ct
	}
	return f
}

func objectToFile(providerName, name, mp string, obj s3types.Object) *pmeta.File {
	f := &pmeta.File{
		Provider: providerName, Name_: name, Path_: mp, Materialized: mp,
		RawETag: strings.Trim(aws.ToString(obj.ETag), `"`),
	}
	if obj.Size != nil {
		f.Size = obj.Size
	}
	if obj.LastModified != nil {
		f.Modified = obj.LastModified.UTC().Format("2006-01-02T15:04:05Z")
	}
	return f
}
