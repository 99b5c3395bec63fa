package httpapi

import "github.com/fileprovider/gateway/pkg/pmeta"

// Document wraps one or more pmeta.Metadata entities in the JSON-API
// shape spec.md §6 describes: {data: {...}} for a single entity,
// {data: [...]} for a folder listing. resourceID is the opaque id the
// routing layer assigns to identify which mounted provider/path a
// relative link is scoped to; it is stamped into every entity's
// attributes as "resource" (see pmeta.jsonAPIEnvelope).
type Document struct {
	Data any `json:"data"`
}

// SingleEntity builds the envelope for one file, folder, or revision.
func SingleEntity(resourceID string, md pmeta.Metadata) Document {
	return Document{Data: md.JSONAPISerialized(resourceID)}
}

// EntityList builds the envelope for a folder listing.
func EntityList(resourceID string, entries []pmeta.Metadata) Document {
	data := make([]map[string]any, len(entries))
	for i, md := range entries {
		data[i] = md.JSONAPISerialized(resourceID)
	}
	return Document{Data: data}
}
