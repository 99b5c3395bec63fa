package pmeta

import "time"

// Revision carries a versioned snapshot of a file. VersionIdentifier names
// the version key a backend uses (usually "revision" or "version");
// Version is that key's value. Backends lacking real version history
// synthesize a single Revision with Version == RevisionLatestSentinel.
type Revision struct {
	Provider          string
	Path_             string
	VersionIdentifier string
	Version           string
	Modified          string
	Extra_            map[string]any
}

var _ Metadata = (*Revision)(nil)

func (r *Revision) Kind() Kind               { return KindRevision }
func (r *Revision) ProviderName() string     { return r.Provider }
func (r *Revision) Name() string             { return r.Version }
func (r *Revision) Path() string             { return r.Path_ }
func (r *Revision) MaterializedPath() string { return r.Path_ }
func (r *Revision) ETag() string             { return HashETag(r.Provider, r.Version) }

func (r *Revision) Extra() map[string]any {
	if r.Extra_ == nil {
		return map[string]any{}
	}
	return r.Extra_
}

// IsLatest reports whether this revision carries the synthesized sentinel.
func (r *Revision) IsLatest() bool { return r.Version == RevisionLatestSentinel }

func (r *Revision) ModifiedUTC() *time.Time {
	t, _ := ParseModifiedUTC(r.Modified)
	return t
}

func (r *Revision) Serialized() map[string]any {
	return map[string]any{
		"provider_name":      r.Provider,
		"kind":               string(KindRevision),
		r.VersionIdentifier:  r.Version,
		"version_identifier": r.VersionIdentifier,
		"modified":           nullableString(r.Modified),
		"modified_utc":       nullableTime(r.ModifiedUTC()),
		"extra":              r.Extra(),
	}
}

// Revisions have no entity-scoped verbs of their own.
func (r *Revision) Links() map[string]string { return map[string]string{} }

func (r *Revision) JSONAPISerialized(resourceID string) map[string]any {
	return jsonAPIEnvelope(resourceID, r.Provider, r.Path_, r.Serialized(), r.Links())
}
