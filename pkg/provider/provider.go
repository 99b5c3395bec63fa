// Package provider defines the uniform backend contract (Provider) and
// the backend-independent orchestration algorithms built on top of it:
// cross-provider copy/move, naming-conflict resolution, recursive folder
// operations, and zip streaming. Concrete backends (pkg/providers/...)
// implement Provider; everything in this package is backend-agnostic.
package provider

import (
	"context"

	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/pstream"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Conflict selects how Upload/Copy/Move resolve a naming
// collision at the destination path.
type Conflict string

const (
	ConflictReplace Conflict = "replace"
	ConflictWarn    Conflict = "warn"
	ConflictKeep    Conflict = "keep"
)

// DownloadOpts carries the optional parameters a download may specify.
type DownloadOpts struct {
	// Revision selects a specific version; "" means current. A provider
	// that synthesizes pmeta.RevisionLatestSentinel must treat it the
	// same as "".
	Revision string
	RangeLo  *int64
	RangeHi  *int64
}

// Provider is the uniform contract every backend adapter implements. It
// intentionally carries no mutable per-file state: two Provider values
// for the same backend and credentials are interchangeable, which is
// what lets the orchestration functions below accept src/dst of
// different concrete types.
type Provider interface {
	// NAME is the provider's identifier string.
	Name() string

	// CanDuplicateNames reports whether a file and folder may share a
	// name within the same container.
	CanDuplicateNames() bool

	// CanIntraCopy/CanIntraMove advertise a same-backend fast path to
	// other. path, when non-nil, lets the decision depend on the
	// specific source (e.g. "only within the same bucket").
	CanIntraCopy(other Provider, path *ppath.Path) bool
	CanIntraMove(other Provider, path *ppath.Path) bool

	// SharesStorageRoot is used for self-overwrite detection: a copy or
	// move whose materialized source and destination paths coincide is
	// only an OverwriteSelfError when the two providers also share a
	// storage root (same backend, same credentials/bucket).
	SharesStorageRoot(other Provider) bool

	// ValidatePath is permissive: it resolves identifiers where the
	// backend is id-based and may leave the last part's ID empty.
	ValidatePath(ctx context.Context, raw string) (ppath.Path, error)

	// ValidateV1Path is strict: NotFound if any part doesn't exist, or if
	// the trailing-slash convention mismatches the resolved entity kind.
	ValidateV1Path(ctx context.Context, raw string) (ppath.Path, error)

	// RevalidatePath resolves name's identifier as a child of base.
	RevalidatePath(ctx context.Context, base ppath.Path, name string, folder bool) (ppath.Path, error)

	// PathFromMetadata is the inverse of ValidatePath, used when turning a
	// listing entry back into an addressable Path.
	PathFromMetadata(parent ppath.Path, md pmeta.Metadata) ppath.Path

	// Metadata returns a single-element slice for a file path, or the
	// full child list for a folder path.
	Metadata(ctx context.Context, path ppath.Path) ([]pmeta.Metadata, error)

	// Download returns a live, lazy stream; callers must close it (via
	// pstream's io.Closer-implementing wrappers) even on error paths.
	Download(ctx context.Context, path ppath.Path, opts DownloadOpts) (pstream.Reader, error)

	// Upload consumes stream fully or returns an error; it never retains
	// stream past return. created reports whether the destination object
	// did not previously exist.
	Upload(ctx context.Context, path ppath.Path, stream pstream.Reader, conflict Conflict) (pmeta.Metadata, bool, error)

	// Delete removes path. Deleting the root requires confirmDelete, and
	// wipes the root's contents while leaving the root itself.
	Delete(ctx context.Context, path ppath.Path, confirmDelete bool) error

	CreateFolder(ctx context.Context, path ppath.Path) (pmeta.Metadata, error)

	// Revisions returns an empty slice by default; backends lacking
	// version history may synthesize one entry carrying
	// pmeta.RevisionLatestSentinel.
	Revisions(ctx context.Context, path ppath.Path) ([]pmeta.Metadata, error)

	// IntraCopy/IntraMove are the backend-native fast path used when
	// CanIntraCopy/CanIntraMove report true for a same-backend transfer.
	IntraCopy(ctx context.Context, dst Provider, src ppath.Path, dstPath ppath.Path) (pmeta.Metadata, bool, error)
	IntraMove(ctx context.Context, dst Provider, src ppath.Path, dstPath ppath.Path) (pmeta.Metadata, bool, error)
}

////////////////////////////////////////////////////////////////////////////////
// READ-ONLY HELPER

// ReadOnly can be embedded by a backend that serves download/metadata
// only, matching spec.md §4.8's "read-only backends" contract
// restatement. It supplies CanIntraCopy/CanIntraMove (both false); the
// backend still implements the mutating verbs itself, rejecting each with
// perr.ReadOnlyProvider.
type ReadOnly struct{ ProviderName string }

func (ReadOnly) CanIntraCopy(Provider, *ppath.Path) bool { return false }
func (ReadOnly) CanIntraMove(Provider, *ppath.Path) bool { return false }
