// Package pmeta implements the uniform metadata model returned by every
// provider verb: a tagged variant over File, Folder and Revision that
// collapses the three-level Base -> File/Folder -> per-backend
// inheritance of the original into one Go interface plus three structs.
// Serialization (including the entity-scoped "links" block and the
// provider-qualified etag) lives on the variant itself rather than a
// shared base class.
package pmeta

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Kind distinguishes the three metadata variants.
type Kind string

const (
	KindFile     Kind = "file"
	KindFolder   Kind = "folder"
	KindRevision Kind = "revision"
)

// RevisionLatestSentinel is the sentinel version identifier a provider
// without true version history exposes for its single synthesized
// revision. A download request carrying this sentinel must be serviced as
// "the current version" (§9 Open Question (a), resolved explicitly here
// rather than postpending a suffix to the etag ad hoc at each call site).
const RevisionLatestSentinel = "latest"

// Metadata is satisfied by File, Folder and Revision. Kind() lets callers
// switch on the concrete variant; Serialized/JSONAPISerialized implement
// the wire format shared by every backend.
type Metadata interface {
	Kind() Kind
	ProviderName() string
	Name() string
	// Path is the identifier-projection path.
	Path() string
	MaterializedPath() string
	// ETag returns the provider-qualified, hashed etag. Empty only when
	// the provider truly cannot supply one (permitted for folders).
	ETag() string
	Extra() map[string]any
	// Serialized renders the flat "attributes" object for this entity.
	Serialized() map[string]any
	// Links enumerates the entity-scoped verbs available for this entity.
	Links() map[string]string
	// JSONAPISerialized wraps Serialized/Links in the {id, type, attributes,
	// links} envelope used by the HTTP boundary, stamping resourceID.
	JSONAPISerialized(resourceID string) map[string]any
}

////////////////////////////////////////////////////////////////////////////////
// ETAG HASHING

// HashETag implements "etag is hash(provider_name || ':' || raw_etag)".
// SHA-256 is used for the hash function; the result is hex-encoded so it
// always renders as a stable ASCII string regardless of the raw etag's
// own character set.
func HashETag(providerName, rawETag string) string {
	if rawETag == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(providerName + ":" + rawETag))
	return hex.EncodeToString(sum[:])
}

////////////////////////////////////////////////////////////////////////////////
// MODIFIED-UTC NORMALIZATION

// isoLayouts are tried in order by ParseModifiedUTC, covering the backend
// timestamp shapes observed across the pack (RFC3339 with/without
// fractional seconds, RFC1123 for HTTP Last-Modified-style values, and a
// bare date).
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseModifiedUTC parses modified with a permissive multi-layout parser,
// forces the result to UTC, and zeroes the sub-second component (so
// repeated serialization is stable). A blank modified yields (nil, nil);
// an unparseable one yields (nil, err).
func ParseModifiedUTC(modified string) (*time.Time, error) {
	if modified == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, modified)
		if err == nil {
			u := t.UTC().Truncate(time.Second)
			return &u, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
