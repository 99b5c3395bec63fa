package provider

import (
	"context"
	"io"

	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// Zip implements the default zip(path) verb: a DFS over the folder tree,
// yielding (relative_path, download_stream) pairs lazily — only one file
// is ever open for download at a time, regardless of archive size. Empty
// folders are yielded with an empty stream entry rather than skipped. A
// file-kind path yields a single-entry archive.
func Zip(ctx context.Context, p Provider, path ppath.Path) (*pstream.ZipStreamReader, error) {
	if path.IsFile() {
		stream, err := p.Download(ctx, path, DownloadOpts{})
		if err != nil {
			return nil, err
		}
		it := pstream.NewSliceIterator([]pstream.ZipEntry{{Name: path.Name(), Stream: stream}})
		return pstream.NewZipStreamReader(it), nil
	}

	children, err := p.Metadata(ctx, path)
	if err != nil {
		return nil, err
	}
	it := &folderIterator{
		ctx: ctx, p: p,
		stack: []stackFrame{{folderPath: path, entries: children}},
	}
	return pstream.NewZipStreamReader(it), nil
}

type stackFrame struct {
	prefix     string // relative path prefix already accumulated, e.g. "" or "sub/"
	folderPath ppath.Path
	entries    []pmeta.Metadata
	idx        int
}

type folderIterator struct {
	ctx   context.Context
	p     Provider
	stack []stackFrame
}

func (it *folderIterator) Next() (pstream.ZipEntry, error) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.idx >= len(top.entries) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		entry := top.entries[top.idx]
		top.idx++
		relName := top.prefix + entry.Name()
		childPath := it.p.PathFromMetadata(top.folderPath, entry)

		if entry.Kind() == pmeta.KindFolder {
			relName += "/"
			children, err := it.p.Metadata(it.ctx, childPath)
			if err != nil {
				return pstream.ZipEntry{}, err
			}
			it.stack = append(it.stack, stackFrame{
				prefix: relName, folderPath: childPath, entries: children,
			})
			// Empty folders still produce an entry; non-empty ones will
			// also yield a directory entry, which unzip tooling tolerates.
			return pstream.ZipEntry{Name: relName, Stream: pstream.NewByteStream(nil)}, nil
		}

		stream, err := it.p.Download(it.ctx, childPath, DownloadOpts{})
		if err != nil {
			return pstream.ZipEntry{}, err
		}
		return pstream.ZipEntry{Name: relName, Stream: stream}, nil
	}
	return pstream.ZipEntry{}, io.EOF
}
