package s3provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// minPartSize matches the teacher's pkg/aws/objects.go: S3 rejects any
// non-final multipart part smaller than 5MiB.
const minPartSize = 5 * 1024 * 1024

// objectListLimit bounds a single DeleteObjects batch, mirroring the
// teacher's schema.ObjectListLimit.
const objectListLimit = 1000

// Upload resolves path against conflict, then drives a multipart upload
// exactly like the teacher's PutObject: CreateMultipartUpload, buffer and
// UploadPart in minPartSize chunks, CompleteMultipartUpload — aborting on
// any part failure.
func (p *Provider) Upload(ctx context.Context, path ppath.Path, stream pstream.Reader, conflict provider.Conflict) (pmeta.Metadata, bool, error) {
	resolved, err := provider.HandleNameConflict(ctx, p, path, conflict)
	if err != nil {
		return nil, false, err
	}
	existed, err := provider.Exists(ctx, p, resolved)
	if err != nil {
		return nil, false, err
	}

	mp := resolved.MaterializedPath()
	key := p.key(mp)

	created, err := p.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(p.bucket), Key: aws.String(key),
	})
	if err != nil {
		return nil, false, mapErr(err, mp)
	}

	var parts []s3types.CompletedPart
	var partNumber int32
	buf := make([]byte, minPartSize)
	for {
		partNumber++
		n, readErr := io.ReadFull(stream, buf)
		if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) && !errors.Is(readErr, io.EOF) {
			p.abortMultipart(ctx, key, created.UploadId)
			return nil, false, fmt.Errorf("s3provider: uploading %q: %w", mp, readErr)
		}
		if n > 0 {
			out, err := p.client.UploadPart(ctx, &s3.UploadPartInput{
				Bucket: aws.String(p.bucket), Key: aws.String(key),
				UploadId: created.UploadId, PartNumber: aws.Int32(partNumber),
				Body: bytes.NewReader(buf[:n]),
			})
			if err != nil {
				p.abortMultipart(ctx, key, created.UploadId)
				return nil, false, mapErr(err, mp)
			}
			parts = append(parts, s3types.CompletedPart{ETag: out.ETag, PartNumber: aws.Int32(partNumber)})
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}
	}

	if _, err := p.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket: aws.String(p.bucket), Key: aws.String(key), UploadId: created.UploadId,
		MultipartUpload: &s3types.CompletedMultipartUpload{Parts: parts},
	}); err != nil {
		return nil, false, mapErr(err, mp)
	}

	entries, err := p.Metadata(ctx, resolved)
	if err != nil {
		return nil, false, err
	}
	return entries[0], !existed, nil
}

func (p *Provider) abortMultipart(ctx context.Context, key string, uploadID *string) {
	_, _ = p.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket: aws.String(p.bucket), Key: aws.String(key), UploadId: uploadID,
	})
}

func (p *Provider) CreateFolder(ctx context.Context, path ppath.Path) (pmeta.Metadata, error) {
	if !path.IsDir() {
		return nil, perr.InvalidPath("CreateFolder requires a folder path")
	}
	mp := path.MaterializedPath()
	key := p.key(mp)
	if key != "" && !strings.HasSuffix(key, "/") {
		key += "/"
	}

	if ok, err := provider.Exists(ctx, p, path); err != nil {
		return nil, err
	} else if ok {
		return nil, perr.FolderNamingConflict(mp, path.Name())
	}

	if _, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket), Key: aws.String(key + folderMarker), Body: bytes.NewReader(nil),
	}); err != nil {
		return nil, mapErr(err, mp)
	}

	return &pmeta.Folder{Provider: p.name, Name_: path.Name(), Path_: mp, Materialized: mp}, nil
}

// Delete mirrors the teacher's DeleteObject (single key) and DeleteObjects
// (prefix listing + batched DeleteObjects, objectListLimit per batch).
func (p *Provider) Delete(ctx context.Context, path ppath.Path, confirmDelete bool) error {
	mp := path.MaterializedPath()
	if path.IsRoot() {
		if !confirmDelete {
			return perr.InvalidParameters("confirm_delete required to empty root")
		}
		return p.deletePrefix(ctx, "")
	}

	if path.IsFile() {
		key := p.key(mp)
		if _, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(p.bucket), Key: aws.String(key)}); err != nil {
			return mapErr(err, mp)
		}
		if _, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(p.bucket), Key: aws.String(key)}); err != nil {
			return mapErr(err, mp)
		}
		return nil
	}

	prefix := strings.TrimSuffix(p.key(mp), "/") + "/"
	if ok, err := p.folderExists(ctx, prefix); err != nil {
		return err
	} else if !ok {
		return perr.NotFound(mp)
	}
	return p.deletePrefix(ctx, prefix)
}

func (p *Provider) deletePrefix(ctx context.Context, prefix string) error {
	var keys []s3types.ObjectIdentifier
	var token *string
	for {
		out, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket: aws.String(p.bucket), Prefix: aws.String(prefix), ContinuationToken: token,
		})
		if err != nil {
			return mapErr(err, prefix)
		}
		for _, obj := range out.Contents {
			keys = append(keys, s3types.ObjectIdentifier{Key: obj.Key})
		}
		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	for offset := 0; offset < len(keys); offset += objectListLimit {
		end := offset + objectListLimit
		if end > len(keys) {
			end = len(keys)
		}
		if _, err := p.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(p.bucket),
			Delete: &s3types.Delete{Objects: keys[offset:end], Quiet: aws.Bool(true)},
		}); err != nil {
			return mapErr(err, prefix)
		}
	}
	return nil
}

// Revisions synthesizes a single latest revision unless the bucket has
// versioning enabled, in which case the real version history is returned
// via ListObjectVersions.
func (p *Provider) Revisions(ctx context.Context, path ppath.Path) ([]pmeta.Metadata, error) {
	mp := path.MaterializedPath()
	entries, err := p.Metadata(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 || entries[0].Kind() != pmeta.KindFile {
		return nil, perr.InvalidPath("Revisions requires a file path")
	}

	versioning, err := p.client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(p.bucket)})
	if err != nil || versioning.Status != s3types.BucketVersioningStatusEnabled {
		f := entries[0].(*pmeta.File)
		return []pmeta.Metadata{&pmeta.Revision{
			Provider: p.name, Path_: f.Path_, VersionIdentifier: "revision",
			Version: pmeta.RevisionLatestSentinel, Modified: f.Modified,
		}}, nil
	}

	key := p.key(mp)
	out, err := p.client.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{
		Bucket: aws.String(p.bucket), Prefix: aws.String(key),
	})
	if err != nil {
		return nil, mapErr(err, mp)
	}

	var revisions []pmeta.Metadata
	for _, v := range out.Versions {
		if aws.ToString(v.Key) != key {
			continue
		}
		modified := ""
		if v.LastModified != nil {
			modified = v.LastModified.UTC().Format("2006-01-02T15:04:05Z")
		}
		version := aws.ToString(v.VersionId)
		if aws.ToBool(v.IsLatest) {
			version = pmeta.RevisionLatestSentinel
		}
		revisions = append(revisions, &pmeta.Revision{
			Provider: p.name, Path_: mp, VersionIdentifier: "version_id",
			Version: version, Modified: modified,
		})
	}
	return revisions, nil
}

// IntraCopy/IntraMove use S3's server-side CopyObject, only reachable once
// CanIntraCopy/CanIntraMove confirm dst shares this client and bucket.
func (p *Provider) IntraCopy(ctx context.Context, dst provider.Provider, src ppath.Path, dstPath ppath.Path) (pmeta.Metadata, bool, error) {
	other := dst.(*Provider)
	srcKey := p.key(src.MaterializedPath())
	dstKey := other.key(dstPath.MaterializedPath())

	existed, err := provider.Exists(ctx, other, dstPath)
	if err != nil {
		return nil, false, err
	}

	if _, err := p.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket: aws.String(other.bucket), Key: aws.String(dstKey),
		CopySource: aws.String(p.bucket + "/" + srcKey),
	}); err != nil {
		return nil, false, mapErr(err, dstPath.MaterializedPath())
	}

	entries, err := other.Metadata(ctx, dstPath)
	if err != nil {
		return nil, false, err
	}
	return entries[0], !existed, nil
}

func (p *Provider) IntraMove(ctx context.Context, dst provider.Provider, src ppath.Path, dstPath ppath.Path) (pmeta.Metadata, bool, error) {
	md, created, err := p.IntraCopy(ctx, dst, src, dstPath)
	if err != nil {
		return nil, false, err
	}
	if _, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket), Key: aws.String(p.key(src.MaterializedPath())),
	}); err != nil {
		return nil, false, mapErr(err, src.MaterializedPath())
	}
	return md, created, nil
}
