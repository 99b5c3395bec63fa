package httpapi

import "strings"

// mimeOverrides lists extensions whose backend-reported content type is
// unreliable enough (or absent often enough) that a fixed override beats
// trusting the backend. Prevents downstream renamers from appending
// ".txt" to, e.g., a CSV served as text/plain.
var mimeOverrides = map[string]string{
	".csv":  "text/csv",
	".md":   "text/x-markdown",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".webm": "video/webm",
	".ogv":  "video/ogg",
}

// OverrideContentType returns the overridden content type for ext (a
// dotted extension such as ".csv", case-insensitive), or reported
// unchanged when ext has no override.
func OverrideContentType(ext, reported string) string {
	if override, ok := mimeOverrides[strings.ToLower(ext)]; ok {
		return override
	}
	return reported
}
