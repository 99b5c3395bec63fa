// Package httpapi implements the HTTP-boundary concerns the core itself
// stays agnostic of: Content-Disposition construction, the MIME override
// table, the JSON-API response envelope, and the signed callback channel.
// None of it is wired into a routing framework here (routing is an
// external collaborator per spec.md §1); it is the set of pure functions
// a handler built on top of the provider package calls.
package httpapi

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f]`)

// StripForDisposition reduces filename to the ASCII subset permitted in a
// non-extended Content-Disposition parameter: NFKD-decompose, drop
// anything that doesn't fold to ASCII, replace control characters with
// "_", and backslash-escape '\' and '"'.
func StripForDisposition(filename string) string {
	decomposed := norm.NFKD.String(filename)
	ascii := make([]rune, 0, len(decomposed))
	for _, r := range decomposed {
		if r <= unicode.MaxASCII {
			ascii = append(ascii, r)
		}
	}
	stripped := controlChars.ReplaceAllString(string(ascii), "_")
	stripped = strings.ReplaceAll(stripped, `\`, `\\`)
	stripped = strings.ReplaceAll(stripped, `"`, `\"`)
	return stripped
}

// EncodeForDisposition percent-encodes filename per RFC 5987's
// ext-value value-chars, for use as the filename* directive.
func EncodeForDisposition(filename string) string {
	return rfc5987Encode(filename)
}

// MakeDisposition builds the Content-Disposition header value: bare
// "attachment" with no filename, otherwise both the legacy filename=
// directive (ASCII-folded, escaped) and the RFC 5987 filename*
// directive, so a client honoring either one gets a sane name.
func MakeDisposition(filename string) string {
	if filename == "" {
		return "attachment"
	}
	return `attachment; filename="` + StripForDisposition(filename) + `"; filename*=UTF-8''` + EncodeForDisposition(filename)
}

// rfc5987Encode percent-encodes every byte of s's UTF-8 representation
// outside RFC 5987's attr-char set. Each byte is encoded on its own
// (rather than delegating to net/url, which escapes space as "+" and
// operates rune-wise) since attr-char is defined over raw octets, not
// Unicode code points.
func rfc5987Encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '&', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
