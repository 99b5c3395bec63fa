package provider

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
)

// DefaultOpConcurrency bounds the fan-out of a recursive folder copy/move
// (SPEC_FULL.md §5 Open Question (c): exposed as configuration, not a
// compile-time constant).
const DefaultOpConcurrency = 8

// TransferOptions parameterizes Copy and Move.
type TransferOptions struct {
	Src, Dst         Provider
	SrcPath, DstPath ppath.Path
	// Rename overrides the destination name; wins over Src's own name.
	Rename        string
	Conflict      Conflict
	HandleNaming  bool
	OpConcurrency int
}

func (o TransferOptions) concurrency() int64 {
	if o.OpConcurrency > 0 {
		return int64(o.OpConcurrency)
	}
	return int64(DefaultOpConcurrency)
}

// Copy implements the cross-provider copy algorithm of spec.md §4.6. It
// never materializes bytes in the gateway process: for a file, the
// source's download stream is handed directly to the destination's
// upload.
func Copy(ctx context.Context, o TransferOptions) (pmeta.Metadata, bool, error) {
	dstPath := o.DstPath
	if o.HandleNaming {
		name := o.Rename
		if name == "" {
			name = o.SrcPath.Name()
		}
		target := dstPath.Child(name, "", o.SrcPath.IsDir())
		if target.MaterializedPath() == o.SrcPath.MaterializedPath() && o.Src.SharesStorageRoot(o.Dst) {
			return nil, false, perr.OverwriteSelf(o.SrcPath.MaterializedPath())
		}
		resolved, err := HandleNameConflict(ctx, o.Dst, target, o.Conflict)
		if err != nil {
			return nil, false, err
		}
		dstPath = resolved
	}

	if o.Src.CanIntraCopy(o.Dst, &o.SrcPath) {
		return o.Src.IntraCopy(ctx, o.Dst, o.SrcPath, dstPath)
	}

	if o.SrcPath.IsDir() {
		return copyFolder(ctx, o, dstPath)
	}
	return copyFile(ctx, o, dstPath)
}

func copyFile(ctx context.Context, o TransferOptions, dstPath ppath.Path) (pmeta.Metadata, bool, error) {
	stream, err := o.Src.Download(ctx, o.SrcPath, DownloadOpts{})
	if err != nil {
		return nil, false, err
	}
	if closer, ok := stream.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	// If the downloaded stream carries its own display name, rename the
	// destination to match it; otherwise the resolved destination name
	// (a Rename override or an incremented name included) is kept.
	if named, ok := stream.(interface{ Name() string }); ok && named.Name() != "" && named.Name() != dstPath.Name() {
		dstPath = dstPath.Rename(named.Name())
	}
	md, created, err := o.Dst.Upload(ctx, dstPath, stream, o.Conflict)
	if err != nil {
		return nil, false, err
	}
	return md, created, nil
}

func copyFolder(ctx context.Context, o TransferOptions, dstPath ppath.Path) (pmeta.Metadata, bool, error) {
	created := false
	if ok, _ := Exists(ctx, o.Dst, dstPath); ok {
		if err := o.Dst.Delete(ctx, dstPath, false); err != nil && !perr.IsNotFound(err) {
			return nil, false, err
		}
	} else {
		created = true
	}
	folderMD, err := o.Dst.CreateFolder(ctx, dstPath)
	if err != nil {
		return nil, false, err
	}

	children, err := o.Src.Metadata(ctx, o.SrcPath)
	if err != nil {
		return nil, false, err
	}

	var folderChildren []pmeta.Metadata
	var fileChildren []pmeta.Metadata
	for _, c := range children {
		if c.Kind() == pmeta.KindFolder {
			folderChildren = append(folderChildren, c)
		} else {
			fileChildren = append(fileChildren, c)
		}
	}

	result := make([]pmeta.Metadata, 0, len(children))
	var resultMu sync.Mutex
	var firstErr error
	var errMu sync.Mutex
	recordErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	// Folders first, sequentially, to keep a predictable DFS skeleton.
	for _, c := range folderChildren {
		childSrc := o.Src.PathFromMetadata(o.SrcPath, c)
		childDst := dstPath.Child(c.Name(), "", true)
		md, _, err := Copy(ctx, TransferOptions{
			Src: o.Src, Dst: o.Dst,
			SrcPath: childSrc, DstPath: childDst,
			Conflict: o.Conflict, HandleNaming: false,
			OpConcurrency: o.OpConcurrency,
		})
		if err != nil {
			recordErr(err)
			continue
		}
		result = append(result, md)
	}

	// Files fan out, bounded by OpConcurrency.
	if len(fileChildren) > 0 {
		sem := semaphore.NewWeighted(o.concurrency())
		var wg sync.WaitGroup
		for _, c := range fileChildren {
			c := c
			if err := sem.Acquire(ctx, 1); err != nil {
				recordErr(err)
				break
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)
				childSrc := o.Src.PathFromMetadata(o.SrcPath, c)
				childDst := dstPath.Child(c.Name(), "", false)
				md, _, err := Copy(ctx, TransferOptions{
					Src: o.Src, Dst: o.Dst,
					SrcPath: childSrc, DstPath: childDst,
					Conflict: o.Conflict, HandleNaming: false,
					OpConcurrency: o.OpConcurrency,
				})
				if err != nil {
					recordErr(err)
					return
				}
				resultMu.Lock()
				result = append(result, md)
				resultMu.Unlock()
			}()
		}
		wg.Wait()
	}

	if firstErr != nil {
		// Not atomic: the destination keeps whatever succeeded before the
		// failure (spec.md §7 "Failure semantics of compound operations").
		return nil, created, firstErr
	}

	if fd, ok := folderMD.(*pmeta.Folder); ok {
		fd.Children = result
		return fd, created, nil
	}
	return folderMD, created, nil
}

// Move is identical to Copy but deletes the source after a successful
// non-intra transfer, or delegates to IntraMove when available.
func Move(ctx context.Context, o TransferOptions) (pmeta.Metadata, bool, error) {
	dstPath := o.DstPath
	if o.HandleNaming {
		name := o.Rename
		if name == "" {
			name = o.SrcPath.Name()
		}
		target := dstPath.Child(name, "", o.SrcPath.IsDir())
		if target.MaterializedPath() == o.SrcPath.MaterializedPath() && o.Src.SharesStorageRoot(o.Dst) {
			return nil, false, perr.OverwriteSelf(o.SrcPath.MaterializedPath())
		}
		resolved, err := HandleNameConflict(ctx, o.Dst, target, o.Conflict)
		if err != nil {
			return nil, false, err
		}
		dstPath = resolved
	}

	if o.Src.CanIntraMove(o.Dst, &o.SrcPath) {
		return o.Src.IntraMove(ctx, o.Dst, o.SrcPath, dstPath)
	}

	md, created, err := Copy(ctx, TransferOptions{
		Src: o.Src, Dst: o.Dst,
		SrcPath: o.SrcPath, DstPath: dstPath,
		Conflict: o.Conflict, HandleNaming: false,
		OpConcurrency: o.OpConcurrency,
	})
	if err != nil {
		return nil, false, err
	}
	if err := o.Src.Delete(ctx, o.SrcPath, false); err != nil {
		return nil, false, err
	}
	return md, created, nil
}
