// Package perr defines the error taxonomy raised by the path, stream,
// provider and envelope packages. Every error carries an HTTP status code
// and a flag distinguishing caller mistakes from backend or infrastructure
// failures, so the HTTP boundary can map it without inspecting message text.
package perr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is the base type every error in this module satisfies. It is
// always constructible from its Code alone, so it survives being passed
// across process or RPC boundaries without its original type.
type Error struct {
	Code        int
	Message     string
	LogMessage  string
	IsUserError bool
	Data        map[string]any
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// FromCode rebuilds a bare Error from just a status code, matching the
// "every error class must be instantiable from a single integer" property.
func FromCode(code int) *Error {
	return &Error{Code: code, Message: http.StatusText(code)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d, %s", e.Code, e.Message)
}

func (e *Error) StatusCode() int { return e.Code }

func (e *Error) UserError() bool { return e.IsUserError }

// WithData attaches structured response data (already-JSON cases) and
// mirrors it into the message so Error() is always printable.
func (e *Error) WithData(data map[string]any) *Error {
	e.Data = data
	if b, err := json.Marshal(data); err == nil {
		e.Message = string(b)
	}
	return e
}

func userError(code int, message string) *Error {
	return &Error{Code: code, Message: message, IsUserError: true}
}

// InvalidParameters covers malformed request data. Defaults to 400.
func InvalidParameters(message string) *Error {
	return userError(http.StatusBadRequest, message)
}

func InvalidParametersCode(message string, code int) *Error {
	return userError(code, message)
}

// UnsupportedHTTPMethod is raised when a request arrives with a verb the
// provider's HTTP surface does not route.
func UnsupportedHTTPMethod(method string, supported []string) *Error {
	return New(http.StatusMethodNotAllowed, fmt.Sprintf(
		"method %q not supported, currently supported methods are %v", method, supported))
}

// AuthError is raised by auth handlers; it is a PluginError in the
// original taxonomy, surfaced here as its own constructor since Go has no
// class hierarchy to hang it off of.
func AuthError(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// NotFound is raised whenever a path or identifier does not resolve to an
// existing entity. Treated as a user error: the caller asked for something
// that legitimately is not there.
func NotFound(path string) *Error {
	return userError(http.StatusNotFound, fmt.Sprintf("could not retrieve file or directory %s", path))
}

func ProviderNotFound(name string) *Error {
	return New(http.StatusNotFound, fmt.Sprintf("provider %q not found", name))
}

func InvalidPath(message string) *Error {
	return userError(http.StatusBadRequest, message)
}

// NamingConflict is raised when handle_naming-style conflict resolution
// finds an existing entity and the caller did not ask for overwrite/rename.
func NamingConflict(name string) *Error {
	return userError(http.StatusConflict, fmt.Sprintf(
		"cannot complete action: file or folder %q already exists in this location", name))
}

func FolderNamingConflict(path, name string) *Error {
	return userError(http.StatusConflict, fmt.Sprintf(
		"cannot create folder %q because a file or folder already exists at path %q", name, path))
}

func OverwriteSelf(path string) *Error {
	return userError(http.StatusBadRequest, fmt.Sprintf(
		"unable to move or copy %q: moving or copying a file or folder onto itself is not supported", path))
}

func UnsupportedOperation(message string) *Error {
	if message == "" {
		message = "the requested operation is not supported by this provider"
	}
	return userError(http.StatusForbidden, message)
}

func ReadOnlyProvider(name string) *Error {
	return userError(http.StatusNotImplemented, fmt.Sprintf("provider %q is read-only", name))
}

func UploadChecksumMismatch(message string) *Error {
	if message == "" {
		message = "calculated and received hashes don't match"
	}
	return New(http.StatusInternalServerError, message)
}

func UnexportableFileType(path string) *Error {
	return userError(http.StatusForbidden, fmt.Sprintf(
		"the file at %q cannot be exported to a downloadable format by this provider", path))
}

func UninitializedRepository(ref string) *Error {
	return userError(http.StatusBadRequest, fmt.Sprintf("repository %q has not been initialized", ref))
}

// Op names the verb an UnhandledProviderError came from, letting a single
// constructor stand in for the Copy/Move/Delete/... subclass family: all of
// them share the (message string, code int) signature in the original
// taxonomy, so only the label differs.
type Op string

const (
	OpCopy         Op = "copy"
	OpMove         Op = "move"
	OpDelete       Op = "delete"
	OpDownload     Op = "download"
	OpUpload       Op = "upload"
	OpIntraCopy    Op = "intra_copy"
	OpIntraMove    Op = "intra_move"
	OpMetadata     Op = "metadata"
	OpRevisions    Op = "revisions"
	OpCreateFolder Op = "create_folder"
)

// UnhandledProviderError wraps an unanticipated status code returned by a
// backend for the given operation. This is the only error family the
// request envelope is permitted to construct from a raw response.
type UnhandledProviderError struct {
	*Error
	Op Op
}

func NewUnhandledProviderError(op Op, message string, code int) *UnhandledProviderError {
	if code == 0 {
		code = http.StatusInternalServerError
	}
	return &UnhandledProviderError{Error: New(code, message), Op: op}
}

// AsResponseError builds an UnhandledProviderError from an already-decoded
// JSON response body, or falls back to a raw string, or finally to a
// generic message naming the method and URL. Mirrors exception_from_response.
func AsResponseError(op Op, method, url string, code int, jsonBody map[string]any, rawBody []byte) *UnhandledProviderError {
	if jsonBody != nil {
		e := NewUnhandledProviderError(op, "", code)
		e.WithData(jsonBody)
		return e
	}
	if rawBody != nil {
		e := NewUnhandledProviderError(op, "", code)
		e.WithData(map[string]any{"response": string(rawBody)})
		return e
	}
	return NewUnhandledProviderError(op, fmt.Sprintf(
		"an error occurred while making a %s request to %s", method, url), code)
}

// IsNotFound reports whether err is a perr.Error with a 404 status,
// regardless of which constructor built it.
func IsNotFound(err error) bool {
	var e *Error
	if ue, ok := err.(*UnhandledProviderError); ok {
		return ue.Code == http.StatusNotFound
	}
	if ok := As(err, &e); ok {
		return e.Code == http.StatusNotFound
	}
	return false
}

// As is a small helper mirroring errors.As for the concrete *Error type,
// kept local so callers don't need to import errors just for this check.
func As(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	if ue, ok := err.(*UnhandledProviderError); ok {
		*target = ue.Error
		return true
	}
	return false
}
