// Package ppath implements the dual-representation path model shared by
// every provider: a materialized (human-readable) projection and an
// identifier projection used by backends that address content by opaque
// id rather than by name. Path construction and the name-conflict
// increment rule live here so every provider shares one implementation.
package ppath

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Part is one segment of a Path: a display name and an optional backend
// identifier. The identifier is empty for a part that has not yet been
// resolved against the backend (typically the last part of a path about
// to be created).
type Part struct {
	Name string
	ID   string
}

// Path is an ordered sequence of Parts plus a folder flag. The zero value
// is not valid; use Root or New.
type Path struct {
	parts  []Part
	folder bool
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Root returns the root path, "/", which is always a folder.
func Root() Path {
	return Path{folder: true}
}

// New splits raw on "/" and builds a Path with no identifiers set. This is
// the permissive constructor; a provider's validate_path layers identifier
// resolution on top of it by calling WithIdentifiers.
func New(raw string) Path {
	if raw == "" {
		raw = "/"
	}
	folder := strings.HasSuffix(raw, "/") || raw == "/"
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return Path{folder: true}
	}
	segs := strings.Split(trimmed, "/")
	parts := make([]Part, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, Part{Name: s})
	}
	return Path{parts: parts, folder: folder}
}

// WithIdentifiers returns a copy of p with each part's ID set from ids, in
// order. len(ids) must be <= len(p.parts); a shorter slice leaves trailing
// parts (typically just the last one) without an identifier, as required
// for an entity that is about to be created.
func (p Path) WithIdentifiers(ids []string) Path {
	out := p.clone()
	for i := 0; i < len(ids) && i < len(out.parts); i++ {
		out.parts[i].ID = ids[i]
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// IsRoot reports whether p is the root path.
func (p Path) IsRoot() bool { return len(p.parts) == 0 }

// IsDir reports whether p identifies a folder.
func (p Path) IsDir() bool { return p.folder }

// IsFile reports whether p identifies a file.
func (p Path) IsFile() bool { return !p.folder }

// Parts returns the path's parts. The returned slice must not be mutated.
func (p Path) Parts() []Part { return p.parts }

// Name returns the display name of the last part, or "" for root.
func (p Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.parts[len(p.parts)-1].Name
}

// ID returns the identifier of the last part, which may be empty for an
// entity that does not yet exist on the backend.
func (p Path) ID() string {
	if p.IsRoot() {
		return ""
	}
	return p.parts[len(p.parts)-1].ID
}

// MaterializedPath renders the human-readable projection: "/Parent/Foo.txt"
// for a file, "/Parent/Foo/" for a folder, "/" for root.
func (p Path) MaterializedPath() string {
	if p.IsRoot() {
		return "/"
	}
	names := make([]string, len(p.parts))
	for i, part := range p.parts {
		names[i] = part.Name
	}
	out := "/" + strings.Join(names, "/")
	if p.folder {
		out += "/"
	}
	return out
}

// IdentifierPath renders the backend-identifier projection:
// "/<id-of-parent>/<id-of-foo>". A part with no identifier contributes its
// display name instead, since that is all a not-yet-created entity has.
func (p Path) IdentifierPath() string {
	if p.IsRoot() {
		return "/"
	}
	segs := make([]string, len(p.parts))
	for i, part := range p.parts {
		if part.ID != "" {
			segs[i] = part.ID
		} else {
			segs[i] = part.Name
		}
	}
	out := "/" + strings.Join(segs, "/")
	if p.folder {
		out += "/"
	}
	return out
}

// FullPath is an alias for MaterializedPath, matching the original's
// ambiguous naming for the display-oriented projection.
func (p Path) FullPath() string { return p.MaterializedPath() }

func (p Path) String() string { return p.MaterializedPath() }

// Child returns a new path with an additional part appended. folder
// controls whether the new path is itself a folder (the child is a
// directory) or a file.
func (p Path) Child(name string, id string, folder bool) Path {
	out := p.clone()
	out.parts = append(out.parts, Part{Name: name, ID: id})
	out.folder = folder
	return out
}

// Parent returns the path one level up. The parent of root is root.
func (p Path) Parent() Path {
	if len(p.parts) == 0 {
		return p
	}
	out := p.clone()
	out.parts = out.parts[:len(out.parts)-1]
	out.folder = true
	return out
}

// Rename returns a copy of p with the last part's display name replaced.
// The identifier, if any, is preserved: renaming does not change identity.
func (p Path) Rename(newName string) Path {
	out := p.clone()
	if len(out.parts) > 0 {
		out.parts[len(out.parts)-1].Name = newName
	}
	return out
}

// Equal reports whether p and other denote the same path under both the
// materialized and identifier projections.
func (p Path) Equal(other Path) bool {
	return p.MaterializedPath() == other.MaterializedPath() &&
		p.IdentifierPath() == other.IdentifierPath()
}

var incrementSuffix = regexp.MustCompile(`^(.*) \((\d+)\)$`)

// IncrementName applies the conflict-resolution naming rule: "Foo.txt" ->
// "Foo (1).txt" -> "Foo (2).txt"; for folders, "Bar/" -> "Bar (1)/". The
// numeric suffix, once present, is incremented rather than appended again.
func (p Path) IncrementName() Path {
	out := p.clone()
	if len(out.parts) == 0 {
		return out
	}
	last := &out.parts[len(out.parts)-1]
	ext := ""
	stem := last.Name
	if p.IsFile() {
		ext = path.Ext(stem)
		stem = strings.TrimSuffix(stem, ext)
	}
	if m := incrementSuffix.FindStringSubmatch(stem); m != nil {
		n, _ := strconv.Atoi(m[2])
		stem = fmt.Sprintf("%s (%d)", m[1], n+1)
	} else {
		stem = stem + " (1)"
	}
	last.Name = stem + ext
	last.ID = "" // the incremented name no longer refers to the resolved entity
	return out
}

func (p Path) clone() Path {
	parts := make([]Part, len(p.parts))
	copy(parts, p.parts)
	return Path{parts: parts, folder: p.folder}
}
