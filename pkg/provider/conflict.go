package provider

import (
	"context"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/ppath"
)

// Exists treats perr's NotFound as false rather than propagating it,
// matching the original's exists() helper used by conflict resolution.
func Exists(ctx context.Context, p Provider, path ppath.Path) (bool, error) {
	_, err := p.Metadata(ctx, path)
	if err == nil {
		return true, nil
	}
	if perr.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// HandleNameConflict implements handle_name_conflict: replace always
// accepts the given path (the caller will overwrite); warn raises
// NamingConflict if something is already there; keep increments the name
// until a free slot is found.
func HandleNameConflict(ctx context.Context, p Provider, path ppath.Path, conflict Conflict) (ppath.Path, error) {
	switch conflict {
	case ConflictReplace, "":
		return path, nil
	case ConflictWarn:
		ok, err := Exists(ctx, p, path)
		if err != nil {
			return ppath.Path{}, err
		}
		if ok {
			return ppath.Path{}, perr.NamingConflict(path.Name())
		}
		return path, nil
	case ConflictKeep:
		candidate := path
		for {
			ok, err := Exists(ctx, p, candidate)
			if err != nil {
				return ppath.Path{}, err
			}
			if !ok {
				return candidate, nil
			}
			candidate = candidate.IncrementName()
		}
	default:
		return path, nil
	}
}
