package perr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code int
		user bool
	}{
		{"invalid parameters", InvalidParameters("bad"), http.StatusBadRequest, true},
		{"unsupported method", UnsupportedHTTPMethod("TRACE", []string{"get", "put"}), http.StatusMethodNotAllowed, false},
		{"not found", NotFound("/foo"), http.StatusNotFound, true},
		{"provider not found", ProviderNotFound("s3"), http.StatusNotFound, false},
		{"invalid path", InvalidPath("bad path"), http.StatusBadRequest, true},
		{"naming conflict", NamingConflict("foo.txt"), http.StatusConflict, true},
		{"folder naming conflict", FolderNamingConflict("/a/b", "b"), http.StatusConflict, true},
		{"overwrite self", OverwriteSelf("/a/b"), http.StatusBadRequest, true},
		{"unsupported op", UnsupportedOperation(""), http.StatusForbidden, true},
		{"read only", ReadOnlyProvider("gitlab"), http.StatusNotImplemented, true},
		{"checksum mismatch", UploadChecksumMismatch(""), http.StatusInternalServerError, false},
		{"unexportable", UnexportableFileType("/a.gdoc"), http.StatusForbidden, true},
		{"uninitialized repo", UninitializedRepository("owner/repo"), http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.StatusCode())
			assert.Equal(t, tt.user, tt.err.UserError())
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestFromCode(t *testing.T) {
	err := FromCode(http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, err.Code)
	assert.Equal(t, http.StatusText(http.StatusTeapot), err.Message)
}

func TestUnhandledProviderErrorFromJSON(t *testing.T) {
	body := map[string]any{"error": "quota exceeded"}
	err := AsResponseError(OpUpload, "PUT", "https://example.com/upload", http.StatusForbidden, body, nil)

	assert.Equal(t, OpUpload, err.Op)
	assert.Equal(t, http.StatusForbidden, err.StatusCode())
	assert.Equal(t, body, err.Data)
}

func TestUnhandledProviderErrorFallback(t *testing.T) {
	err := AsResponseError(OpDownload, "GET", "https://example.com/file", http.StatusBadGateway, nil, nil)

	assert.Equal(t, http.StatusBadGateway, err.StatusCode())
	assert.Contains(t, err.Message, "GET")
	assert.Contains(t, err.Message, "https://example.com/file")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("/x")))
	assert.True(t, IsNotFound(NewUnhandledProviderError(OpMetadata, "gone", http.StatusNotFound)))
	assert.False(t, IsNotFound(InvalidPath("bad")))
}

func TestAs(t *testing.T) {
	var target *Error

	assert.True(t, As(NotFound("/x"), &target))
	assert.Equal(t, http.StatusNotFound, target.Code)

	target = nil
	assert.True(t, As(NewUnhandledProviderError(OpCopy, "failed", http.StatusBadGateway), &target))
	assert.Equal(t, http.StatusBadGateway, target.Code)

	target = nil
	assert.False(t, As(assertUnrelatedError{}, &target))
}

type assertUnrelatedError struct{}

func (assertUnrelatedError) Error() string { return "unrelated" }
