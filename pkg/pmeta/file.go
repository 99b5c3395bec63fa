package pmeta

import "time"

// File is the metadata variant for a downloadable entity.
type File struct {
	Provider    string
	Name_       string
	Path_       string // identifier-projection path
	Materialized string
	RawETag     string
	Size        *int64 // nil when unknown
	ContentType *string
	// Modified is the backend-formatted timestamp string, reported as-is.
	Modified string
	// CreatedUTC is nullable even when ModifiedUTC is present.
	CreatedUTC *time.Time
	Extra_      map[string]any
}

var _ Metadata = (*File)(nil)

func (f *File) Kind() Kind             { return KindFile }
func (f *File) ProviderName() string   { return f.Provider }
func (f *File) Name() string           { return f.Name_ }
func (f *File) Path() string           { return f.Path_ }
func (f *File) MaterializedPath() string { return f.Materialized }
func (f *File) ETag() string           { return HashETag(f.Provider, f.RawETag) }

func (f *File) Extra() map[string]any {
	if f.Extra_ == nil {
		return map[string]any{}
	}
	return f.Extra_
}

// ModifiedUTC parses Modified per ParseModifiedUTC. Errors are swallowed
// to nil, matching "a null modified yields null modified_utc" — a
// provider that wants parse failures surfaced should parse up front.
func (f *File) ModifiedUTC() *time.Time {
	t, _ := ParseModifiedUTC(f.Modified)
	return t
}

// SizeAsInt coerces a nil Size to 0, per the spec's size_as_int field.
func (f *File) SizeAsInt() int64 {
	if f.Size == nil {
		return 0
	}
	return *f.Size
}

func (f *File) Serialized() map[string]any {
	out := map[string]any{
		"provider_name": f.Provider,
		"kind":          string(KindFile),
		"name":          f.Name_,
		"path":          f.Path_,
		"materialized_path": f.Materialized,
		"etag":          f.ETag(),
		"extra":         f.Extra(),
		"size":          f.Size,
		"size_as_int":   f.SizeAsInt(),
		"modified":      nullableString(f.Modified),
		"modified_utc":  nullableTime(f.ModifiedUTC()),
		"created_utc":   nullableTime(f.CreatedUTC),
	}
	if f.ContentType != nil {
		out["content_type"] = *f.ContentType
	} else {
		out["content_type"] = nil
	}
	return out
}

func (f *File) Links() map[string]string {
	return map[string]string{
		"move":     linkFor(f.Provider, f.Path_, "move"),
		"delete":   linkFor(f.Provider, f.Path_, "delete"),
		"download": linkFor(f.Provider, f.Path_, "download"),
	}
}

func (f *File) JSONAPISerialized(resourceID string) map[string]any {
	return jsonAPIEnvelope(resourceID, f.Provider, f.Path_, f.Serialized(), f.Links())
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
