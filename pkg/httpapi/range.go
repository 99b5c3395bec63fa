package httpapi

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRange parses an inbound "Range: bytes=a-b" header value, where
// either bound may be omitted ("bytes=5-" or "bytes=-500"). It returns
// nil, nil, nil when header is empty (no range requested); a malformed
// header and a "bytes=" suffix on neither side map to the same
// "unsatisfiable" rather than panicking — the caller decides whether
// that is a 416 or simply "serve the whole entity".
func ParseRange(header string) (lo, hi *int64, err error) {
	if header == "" {
		return nil, nil, nil
	}
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil, nil, fmt.Errorf("httpapi: unsupported range unit in %q", header)
	}
	// Only a single range is supported, matching every backend this
	// gateway fronts (none of gocloud.dev/blob, the S3 SDK, or the
	// Graph-style id provider accept a multi-range request).
	if strings.Contains(spec, ",") {
		return nil, nil, fmt.Errorf("httpapi: multiple ranges not supported in %q", header)
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("httpapi: malformed range %q", header)
	}
	if parts[0] == "" && parts[1] == "" {
		return nil, nil, fmt.Errorf("httpapi: malformed range %q", header)
	}
	if parts[0] != "" {
		v, perr := strconv.ParseInt(parts[0], 10, 64)
		if perr != nil {
			return nil, nil, fmt.Errorf("httpapi: malformed range %q: %w", header, perr)
		}
		lo = &v
	}
	if parts[1] != "" {
		v, perr := strconv.ParseInt(parts[1], 10, 64)
		if perr != nil {
			return nil, nil, fmt.Errorf("httpapi: malformed range %q: %w", header, perr)
		}
		hi = &v
	}
	return lo, hi, nil
}

// ContentRange renders the outbound "Content-Range: bytes a-b/total"
// header value for a partial response.
func ContentRange(lo, hi, total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", lo, hi, total)
}
