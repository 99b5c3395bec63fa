package fsprovider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
	"github.com/fileprovider/gateway/pkg/providers/fsprovider"
	"github.com/fileprovider/gateway/pkg/pstream"
)

func newMemProvider(t *testing.T, name string) *fsprovider.Provider {
	t.Helper()
	p, err := fsprovider.New(context.Background(), name, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func Test_UploadDownload_RoundTrip(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	p := newMemProvider(t, "fs")

	md, created, err := p.Upload(ctx, ppath.New("/hello.txt"), pstream.NewStringStream("hello world"), provider.ConflictReplace)
	require.NoError(err)
	assert.True(created)
	assert.Equal("hello.txt", md.Name())

	r, err := p.Download(ctx, ppath.New("/hello.txt"), provider.DownloadOpts{})
	require.NoError(err)
	defer r.Close()
	body := readAll(t, r)
	assert.Equal("hello world", string(body))
}

func Test_Upload_ConflictKeep_Increments(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	p := newMemProvider(t, "fs")

	_, _, err := p.Upload(ctx, ppath.New("/a.txt"), pstream.NewStringStream("one"), provider.ConflictReplace)
	require.NoError(err)

	md, created, err := p.Upload(ctx, ppath.New("/a.txt"), pstream.NewStringStream("two"), provider.ConflictKeep)
	require.NoError(err)
	assert.True(created)
	assert.NotEqual("/a.txt", md.MaterializedPath())
}

func Test_CreateFolder_And_Metadata_Listing(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	p := newMemProvider(t, "fs")

	_, err := p.CreateFolder(ctx, ppath.New("/dir/"))
	require.NoError(err)
	_, _, err = p.Upload(ctx, ppath.New("/dir/child.txt"), pstream.NewStringStream("x"), provider.ConflictReplace)
	require.NoError(err)

	entries, err := p.Metadata(ctx, ppath.New("/dir/"))
	require.NoError(err)
	require.Len(entries, 1)
	assert.Equal("child.txt", entries[0].Name())
	assert.Equal(pmeta.KindFile, entries[0].Kind())
}

func Test_Metadata_MissingFile_NotFound(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	p := newMemProvider(t, "fs")

	_, err := p.Metadata(ctx, ppath.New("/missing.txt"))
	require.Error(err)
	var pe *perr.Error
	require.True(perr.As(err, &pe))
	require.Equal(404, pe.Code)
}

func Test_Delete_File(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	p := newMemProvider(t, "fs")

	_, _, err := p.Upload(ctx, ppath.New("/a.txt"), pstream.NewStringStream("x"), provider.ConflictReplace)
	require.NoError(err)
	require.NoError(p.Delete(ctx, ppath.New("/a.txt"), false))

	_, err = p.Metadata(ctx, ppath.New("/a.txt"))
	require.Error(err)
}

func Test_Delete_FolderRecursive(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	p := newMemProvider(t, "fs")

	_, err := p.CreateFolder(ctx, ppath.New("/dir/"))
	require.NoError(err)
	_, _, err = p.Upload(ctx, ppath.New("/dir/a.txt"), pstream.NewStringStream("x"), provider.ConflictReplace)
	require.NoError(err)
	_, _, err = p.Upload(ctx, ppath.New("/dir/nested/b.txt"), pstream.NewStringStream("y"), provider.ConflictReplace)
	require.NoError(err)

	require.NoError(p.Delete(ctx, ppath.New("/dir/"), false))

	_, err = p.Metadata(ctx, ppath.New("/dir/"))
	require.Error(err)
}

func Test_Delete_Root_RequiresConfirm(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	p := newMemProvider(t, "fs")

	err := p.Delete(ctx, ppath.Root(), false)
	require.Error(err)
	var pe *perr.Error
	require.True(perr.As(err, &pe))
	require.Equal(400, pe.Code)

	require.NoError(p.Delete(ctx, ppath.Root(), true))
}

func Test_IntraCopy_SameBucket(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	p := newMemProvider(t, "fs")

	_, _, err := p.Upload(ctx, ppath.New("/src.txt"), pstream.NewStringStream("payload"), provider.ConflictReplace)
	require.NoError(err)

	require.True(p.CanIntraCopy(p, nil))

	md, created, err := p.IntraCopy(ctx, p, ppath.New("/src.txt"), ppath.New("/dst.txt"))
	require.NoError(err)
	assert.True(created)
	assert.Equal("dst.txt", md.Name())

	r, err := p.Download(ctx, ppath.New("/dst.txt"), provider.DownloadOpts{})
	require.NoError(err)
	defer r.Close()
	assert.Equal("payload", string(readAll(t, r)))
}

func Test_CrossProvider_CopyOrchestration(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	src := newMemProvider(t, "src")
	dst := newMemProvider(t, "dst")

	_, _, err := src.Upload(ctx, ppath.New("/report.txt"), pstream.NewStringStream("data"), provider.ConflictReplace)
	require.NoError(err)

	md, created, err := provider.Copy(ctx, provider.TransferOptions{
		Src: src, Dst: dst,
		SrcPath: ppath.New("/report.txt"), DstPath: ppath.New("/report.txt"),
		Conflict: provider.ConflictReplace,
	})
	require.NoError(err)
	assert.True(created)
	assert.Equal("report.txt", md.Name())

	r, err := dst.Download(ctx, ppath.New("/report.txt"), provider.DownloadOpts{})
	require.NoError(err)
	defer r.Close()
	assert.Equal("data", string(readAll(t, r)))
}

func readAll(t *testing.T, r pstream.Reader) []byte {
	t.Helper()
	buf := make([]byte, 0)
	tmp := make([]byte, 4096)
	for {
		n, err := r.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if err != nil {
			break
		}
	}
	return buf
}
