package pmeta

// Folder is the metadata variant for a container entity. Children is nil
// when unknown (metadata lookup for a single folder) and a (possibly
// empty) slice when authoritative (the result of a listing).
type Folder struct {
	Provider     string
	Name_        string
	Path_        string
	Materialized string
	RawETag      string // folders may legitimately have no etag
	Extra_       map[string]any
	Children     []Metadata
}

var _ Metadata = (*Folder)(nil)

func (d *Folder) Kind() Kind               { return KindFolder }
func (d *Folder) ProviderName() string     { return d.Provider }
func (d *Folder) Name() string             { return d.Name_ }
func (d *Folder) Path() string             { return d.Path_ }
func (d *Folder) MaterializedPath() string { return d.Materialized }
func (d *Folder) ETag() string             { return HashETag(d.Provider, d.RawETag) }

func (d *Folder) Extra() map[string]any {
	if d.Extra_ == nil {
		return map[string]any{}
	}
	return d.Extra_
}

// HasChildren reports whether Children is authoritative (non-nil).
func (d *Folder) HasChildren() bool { return d.Children != nil }

func (d *Folder) Serialized() map[string]any {
	out := map[string]any{
		"provider_name":     d.Provider,
		"kind":              string(KindFolder),
		"name":              d.Name_,
		"path":              d.Path_,
		"materialized_path": d.Materialized,
		"etag":              d.ETag(),
		"extra":             d.Extra(),
	}
	if d.Children != nil {
		children := make([]map[string]any, len(d.Children))
		for i, c := range d.Children {
			children[i] = c.Serialized()
		}
		out["children"] = children
	}
	return out
}

func (d *Folder) Links() map[string]string {
	return map[string]string{
		"move":       linkFor(d.Provider, d.Path_, "move"),
		"delete":     linkFor(d.Provider, d.Path_, "delete"),
		"upload":     linkFor(d.Provider, d.Path_, "upload"),
		"new_folder": linkFor(d.Provider, d.Path_, "new_folder"),
	}
}

func (d *Folder) JSONAPISerialized(resourceID string) map[string]any {
	return jsonAPIEnvelope(resourceID, d.Provider, d.Path_, d.Serialized(), d.Links())
}
