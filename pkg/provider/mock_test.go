package provider_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/pmeta"
	"github.com/fileprovider/gateway/pkg/ppath"
	"github.com/fileprovider/gateway/pkg/provider"
	"github.com/fileprovider/gateway/pkg/pstream"
)

// mockProvider is an in-memory Provider used to exercise the
// backend-independent orchestration algorithms without a real backend.
type mockProvider struct {
	name string
	mu   sync.Mutex
	// files maps a materialized file path to its raw content.
	files map[string][]byte
	// folders is the set of materialized folder paths known to exist
	// (always includes "/").
	folders map[string]bool
}

func newMockProvider(name string) *mockProvider {
	return &mockProvider{
		name:    name,
		files:   map[string][]byte{},
		folders: map[string]bool{"/": true},
	}
}

var _ provider.Provider = (*mockProvider)(nil)

func (m *mockProvider) Name() string                  { return m.name }
func (m *mockProvider) CanDuplicateNames() bool       { return false }
func (m *mockProvider) CanIntraCopy(provider.Provider, *ppath.Path) bool { return false }
func (m *mockProvider) CanIntraMove(provider.Provider, *ppath.Path) bool { return false }

func (m *mockProvider) SharesStorageRoot(other provider.Provider) bool {
	o, ok := other.(*mockProvider)
	return ok && o == m
}

func (m *mockProvider) ValidatePath(ctx context.Context, raw string) (ppath.Path, error) {
	return ppath.New(raw), nil
}

func (m *mockProvider) ValidateV1Path(ctx context.Context, raw string) (ppath.Path, error) {
	p := ppath.New(raw)
	ok, err := provider.Exists(ctx, m, p)
	if err != nil {
		return ppath.Path{}, err
	}
	if !ok {
		return ppath.Path{}, perr.NotFound(raw)
	}
	return p, nil
}

func (m *mockProvider) RevalidatePath(ctx context.Context, base ppath.Path, name string, folder bool) (ppath.Path, error) {
	return base.Child(name, "", folder), nil
}

func (m *mockProvider) PathFromMetadata(parent ppath.Path, md pmeta.Metadata) ppath.Path {
	return parent.Child(md.Name(), "", md.Kind() == pmeta.KindFolder)
}

func (m *mockProvider) Metadata(ctx context.Context, path ppath.Path) ([]pmeta.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp := path.MaterializedPath()

	if path.IsFile() {
		content, ok := m.files[mp]
		if !ok {
			return nil, perr.NotFound(mp)
		}
		return []pmeta.Metadata{&pmeta.File{
			Provider: m.name, Name_: path.Name(), Path_: mp, Materialized: mp,
			RawETag: mp, Size: ptrInt64(int64(len(content))),
		}}, nil
	}

	if !m.folders[mp] {
		return nil, perr.NotFound(mp)
	}
	var children []pmeta.Metadata
	seenFolders := map[string]bool{}
	for fp := range m.folders {
		if fp == mp {
			continue
		}
		if name, ok := directChild(mp, fp); ok && !seenFolders[name] {
			seenFolders[name] = true
			children = append(children, &pmeta.Folder{
				Provider: m.name, Name_: name, Path_: fp, Materialized: fp,
			})
		}
	}
	for fp, content := range m.files {
		if name, ok := directChild(mp, fp); ok {
			children = append(children, &pmeta.File{
				Provider: m.name, Name_: name, Path_: fp, Materialized: fp,
				RawETag: fp, Size: ptrInt64(int64(len(content))),
			})
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })
	return children, nil
}

// directChild reports whether fp is an immediate child of folder mp, and
// if so returns its display name.
func directChild(mp, fp string) (string, bool) {
	if !strings.HasPrefix(fp, mp) {
		return "", false
	}
	rest := strings.TrimPrefix(fp, mp)
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func (m *mockProvider) Download(ctx context.Context, path ppath.Path, opts provider.DownloadOpts) (pstream.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path.MaterializedPath()]
	if !ok {
		return nil, perr.NotFound(path.MaterializedPath())
	}
	buf := make([]byte, len(content))
	copy(buf, content)
	return pstream.NewByteStream(buf), nil
}

func (m *mockProvider) Upload(ctx context.Context, path ppath.Path, stream pstream.Reader, conflict provider.Conflict) (pmeta.Metadata, bool, error) {
	resolved, err := provider.HandleNameConflict(ctx, m, path, conflict)
	if err != nil {
		return nil, false, err
	}
	buf := make([]byte, 0)
	tmp := make([]byte, 4096)
	for {
		n, err := stream.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if err != nil {
			break
		}
	}
	m.mu.Lock()
	_, existed := m.files[resolved.MaterializedPath()]
	m.files[resolved.MaterializedPath()] = buf
	m.ensureParents(resolved)
	m.mu.Unlock()
	return &pmeta.File{
		Provider: m.name, Name_: resolved.Name(), Path_: resolved.MaterializedPath(),
		Materialized: resolved.MaterializedPath(), RawETag: resolved.MaterializedPath(),
		Size: ptrInt64(int64(len(buf))),
	}, !existed, nil
}

func (m *mockProvider) ensureParents(path ppath.Path) {
	parent := path.Parent()
	for {
		m.folders[parent.MaterializedPath()] = true
		if parent.IsRoot() {
			break
		}
		parent = parent.Parent()
	}
}

func (m *mockProvider) Delete(ctx context.Context, path ppath.Path, confirmDelete bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp := path.MaterializedPath()
	if path.IsFile() {
		delete(m.files, mp)
		return nil
	}
	if mp == "/" && !confirmDelete {
		return perr.InvalidParameters("confirm_delete required to empty root")
	}
	for fp := range m.files {
		if strings.HasPrefix(fp, mp) {
			delete(m.files, fp)
		}
	}
	for fp := range m.folders {
		if fp != "/" && strings.HasPrefix(fp, mp) {
			delete(m.folders, fp)
		}
	}
	if mp != "/" {
		delete(m.folders, mp)
	}
	return nil
}

func (m *mockProvider) CreateFolder(ctx context.Context, path ppath.Path) (pmeta.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[path.MaterializedPath()] = true
	m.ensureParents(path)
	return &pmeta.Folder{Provider: m.name, Name_: path.Name(), Path_: path.MaterializedPath(), Materialized: path.MaterializedPath()}, nil
}

func (m *mockProvider) Revisions(ctx context.Context, path ppath.Path) ([]pmeta.Metadata, error) {
	return nil, nil
}

func (m *mockProvider) IntraCopy(ctx context.Context, dst provider.Provider, src ppath.Path, dstPath ppath.Path) (pmeta.Metadata, bool, error) {
	return nil, false, perr.UnsupportedOperation("intra copy not supported")
}

func (m *mockProvider) IntraMove(ctx context.Context, dst provider.Provider, src ppath.Path, dstPath ppath.Path) (pmeta.Metadata, bool, error) {
	return nil, false, perr.UnsupportedOperation("intra move not supported")
}

func ptrInt64(n int64) *int64 { return &n }
