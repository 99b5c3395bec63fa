package pmeta

// linkFor builds one entity-scoped verb link. Routing is an external
// collaborator (see spec.md §6); this renders the minimal relative
// reference the HTTP boundary layer expands into an absolute URL.
func linkFor(provider, path, verb string) string {
	return "/v1/resources/{rid}/providers/" + provider + path + "?action=" + verb
}

// jsonAPIEnvelope wraps a flat attributes map and links block in the
// {id, type, attributes, links} shape every entity serializes to.
// id = provider_name + path, per spec.md §4.3.
func jsonAPIEnvelope(resourceID, provider, path string, attrs map[string]any, links map[string]string) map[string]any {
	attrsCopy := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		attrsCopy[k] = v
	}
	attrsCopy["resource"] = resourceID
	return map[string]any{
		"id":         provider + path,
		"type":       "files",
		"attributes": attrsCopy,
		"links":      links,
	}
}
