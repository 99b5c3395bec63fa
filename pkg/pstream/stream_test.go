package pstream_test

import (
	"archive/zip"
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pstream "github.com/fileprovider/gateway/pkg/pstream"
)

func drain(t *testing.T, r io.Reader, chunk int) []byte {
	t.Helper()
	var out bytes.Buffer
	buf := make([]byte, chunk)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	return out.Bytes()
}

func Test_StringStream_Exact(t *testing.T) {
	assert := assert.New(t)
	s := pstream.NewStringStream("hello world")
	got := drain(t, s, 4096)
	assert.Equal("hello world", string(got))
	n, err := s.Read(make([]byte, 8))
	assert.Equal(0, n)
	assert.Equal(io.EOF, err)
}

func Test_StringStream_OneByte(t *testing.T) {
	assert := assert.New(t)
	s := pstream.NewStringStream("hello world")
	got := drain(t, s, 1)
	assert.Equal("hello world", string(got))
}

func Test_Base64EncodeStream(t *testing.T) {
	assert := assert.New(t)
	s := pstream.NewBase64EncodeStream(pstream.NewStringStream("this is a test"))
	got := drain(t, s, 4096)
	assert.Equal("dGhpcyBpcyBhIHRlc3Q=", string(got))
	assert.EqualValues(20, *s.Size())
}

func Test_Base64EncodeStream_OneByte(t *testing.T) {
	assert := assert.New(t)
	raw := []byte("the quick brown fox jumps over the lazy dog 0123456789")
	s := pstream.NewBase64EncodeStream(pstream.NewByteStream(raw))
	got := drain(t, s, 1)
	assert.Equal(base64.StdEncoding.EncodeToString(raw), string(got))
}

func Test_Base64EncodeStream_ArbitraryChunking(t *testing.T) {
	raw := bytes.Repeat([]byte("abcdefghij"), 37) // not a multiple of 3
	for _, chunk := range []int{1, 2, 3, 5, 7, 4096} {
		s := pstream.NewBase64EncodeStream(pstream.NewByteStream(raw))
		got := drain(t, s, chunk)
		assert.Equal(t, base64.StdEncoding.EncodeToString(raw), string(got), "chunk=%d", chunk)
	}
}

func Test_CutoffStream(t *testing.T) {
	assert := assert.New(t)
	inner := pstream.NewStringStream("abcdefghij")
	first := pstream.NewCutoffStream(inner, 4)
	got := drain(t, first, 4096)
	assert.Equal("abcd", string(got))

	second := pstream.NewCutoffStream(inner, 3)
	got2 := drain(t, second, 4096)
	assert.Equal("efg", string(got2))
}

func Test_MultiStream(t *testing.T) {
	assert := assert.New(t)
	m := pstream.NewMultiStream(
		pstream.NewStringStream("foo"),
		pstream.NewStringStream("bar"),
		pstream.NewStringStream("baz"),
	)
	got := drain(t, m, 2)
	assert.Equal("foobarbaz", string(got))
	assert.EqualValues(9, *m.Size())
}

func Test_HashStreamWriter(t *testing.T) {
	assert := assert.New(t)
	raw := []byte("checksum me")
	h := md5.New()
	s := pstream.NewHashStreamWriter(pstream.NewByteStream(raw), h)
	_ = drain(t, s, 3)

	want := md5.Sum(raw)
	assert.Equal(hexString(want[:]), s.HexDigest())
}

func hexString(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0xf]
	}
	return string(out)
}

func Test_JSONStream_WithNestedStream(t *testing.T) {
	assert := assert.New(t)
	fields := []pstream.JSONField{
		{Key: "name", Value: "foo.txt"},
		{Key: "size", Value: 14},
		{Key: "content", Value: pstream.NewStringStream("[File Content]")},
	}
	for _, chunk := range []int{1, 3, 4096} {
		s, err := pstream.NewJSONStream(fields)
		assert.NoError(err)
		got := drain(t, s, chunk)
		var decoded map[string]any
		assert.NoError(json.Unmarshal(got, &decoded))
		assert.Equal("foo.txt", decoded["name"])
		assert.Equal(float64(14), decoded["size"])
		assert.Equal("[File Content]", decoded["content"])
	}
}

func Test_ZipStreamReader_SingleFile(t *testing.T) {
	assert := assert.New(t)
	it := pstream.NewSliceIterator([]pstream.ZipEntry{
		{Name: "filename.extension", Stream: pstream.NewStringStream("[File Content]")},
	})
	z := pstream.NewZipStreamReader(it)
	data := drain(t, z, 4096)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	assert.NoError(err)
	assert.Len(r.File, 1)
	assert.Equal("filename.extension", r.File[0].Name)

	rc, err := r.File[0].Open()
	assert.NoError(err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	assert.NoError(err)
	assert.Equal("[File Content]", string(content))
}

func Test_ZipStreamReader_MultipleEntriesValidates(t *testing.T) {
	assert := assert.New(t)
	it := pstream.NewSliceIterator([]pstream.ZipEntry{
		{Name: "a.txt", Stream: pstream.NewStringStream("aaa")},
		{Name: "dir/", Stream: pstream.NewByteStream(nil)},
		{Name: "dir/b.txt", Stream: pstream.NewStringStream("bbb")},
	})
	z := pstream.NewZipStreamReader(it)
	data := drain(t, z, 7)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	assert.NoError(err)
	assert.Len(r.File, 3)
	for _, f := range r.File {
		rc, err := f.Open()
		assert.NoError(err)
		_, err = io.ReadAll(rc)
		assert.NoError(err)
		rc.Close()
	}
}
