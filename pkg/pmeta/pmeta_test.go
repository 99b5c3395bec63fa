package pmeta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pmeta "github.com/fileprovider/gateway/pkg/pmeta"
)

func Test_File_ETag_IsHex(t *testing.T) {
	assert := assert.New(t)
	f := &pmeta.File{Provider: "s3", Path_: "/a/b.txt", RawETag: "abc123"}
	etag := f.ETag()
	assert.NotEmpty(etag)
	for _, c := range etag {
		assert.True((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'))
	}
}

func Test_File_ETag_Equal_Serializations(t *testing.T) {
	assert := assert.New(t)
	a := &pmeta.File{Provider: "s3", Name_: "b.txt", Path_: "/a/b.txt", RawETag: "abc123"}
	b := &pmeta.File{Provider: "s3", Name_: "b.txt", Path_: "/a/b.txt", RawETag: "abc123"}
	assert.Equal(a.JSONAPISerialized("r1"), b.JSONAPISerialized("r1"))
}

func Test_File_ModifiedUTC_NullWhenBlank(t *testing.T) {
	assert := assert.New(t)
	f := &pmeta.File{Provider: "s3", Path_: "/a"}
	assert.Nil(f.ModifiedUTC())
}

func Test_File_ModifiedUTC_ZerosSubsecond(t *testing.T) {
	assert := assert.New(t)
	f := &pmeta.File{Provider: "s3", Path_: "/a", Modified: "2024-01-02T03:04:05.999999Z"}
	got := f.ModifiedUTC()
	assert.NotNil(got)
	assert.Equal(0, got.Nanosecond())
}

func Test_Folder_NoChildrenVsEmpty(t *testing.T) {
	assert := assert.New(t)
	unknown := &pmeta.Folder{Provider: "fs", Path_: "/a/"}
	assert.False(unknown.HasChildren())

	known := &pmeta.Folder{Provider: "fs", Path_: "/a/", Children: []pmeta.Metadata{}}
	assert.True(known.HasChildren())
}

func Test_Folder_Links_IncludeUploadAndNewFolder(t *testing.T) {
	assert := assert.New(t)
	d := &pmeta.Folder{Provider: "fs", Path_: "/a/"}
	links := d.Links()
	assert.Contains(links, "upload")
	assert.Contains(links, "new_folder")
	assert.Contains(links, "move")
	assert.Contains(links, "delete")
}

func Test_File_Links_NoNewFolder(t *testing.T) {
	assert := assert.New(t)
	f := &pmeta.File{Provider: "fs", Path_: "/a/b.txt"}
	links := f.Links()
	assert.Contains(links, "download")
	assert.NotContains(links, "new_folder")
}

func Test_Revision_Sentinel(t *testing.T) {
	assert := assert.New(t)
	r := &pmeta.Revision{Provider: "fs", Path_: "/a/b.txt", VersionIdentifier: "revision", Version: pmeta.RevisionLatestSentinel}
	assert.True(r.IsLatest())
}

func Test_HashETag_Empty(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("", pmeta.HashETag("fs", ""))
}
