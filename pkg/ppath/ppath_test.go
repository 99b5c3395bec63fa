package ppath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ppath "github.com/fileprovider/gateway/pkg/ppath"
)

func Test_Path_001(t *testing.T) {
	assert := assert.New(t)
	p := ppath.Root()
	assert.True(p.IsRoot())
	assert.True(p.IsDir())
	assert.Equal("/", p.MaterializedPath())
}

func Test_Path_002(t *testing.T) {
	assert := assert.New(t)
	p := ppath.New("/Parent Folder/Foo.txt")
	assert.False(p.IsRoot())
	assert.True(p.IsFile())
	assert.Equal("Foo.txt", p.Name())
	assert.Equal("/Parent Folder/Foo.txt", p.MaterializedPath())
}

func Test_Path_003(t *testing.T) {
	assert := assert.New(t)
	p := ppath.New("/Parent/Child/")
	assert.True(p.IsDir())
	assert.Equal("/Parent/Child/", p.MaterializedPath())
}

func Test_Path_IdentifierPath(t *testing.T) {
	assert := assert.New(t)
	p := ppath.New("/a/b.txt").WithIdentifiers([]string{"id-a"})
	assert.Equal("/id-a/b.txt", p.IdentifierPath())
}

func Test_Path_IncrementName_File(t *testing.T) {
	assert := assert.New(t)
	p := ppath.New("/Foo.txt")
	p1 := p.IncrementName()
	assert.Equal("Foo (1).txt", p1.Name())
	p2 := p1.IncrementName()
	assert.Equal("Foo (2).txt", p2.Name())
}

func Test_Path_IncrementName_Folder(t *testing.T) {
	assert := assert.New(t)
	p := ppath.New("/Bar/")
	p1 := p.IncrementName()
	assert.Equal("Bar (1)", p1.Name())
	assert.True(p1.IsDir())
}

func Test_Path_Equal(t *testing.T) {
	assert := assert.New(t)
	a := ppath.New("/a/b.txt")
	b := ppath.New("/a/b.txt")
	assert.True(a.Equal(b))

	c := a.WithIdentifiers([]string{"x"})
	assert.False(a.Equal(c))
}

func Test_Path_Idempotence(t *testing.T) {
	assert := assert.New(t)
	for _, raw := range []string{"/", "/a/", "/a/b.txt", "/a/b/c/"} {
		p := ppath.New(raw)
		assert.Equal(p.MaterializedPath(), ppath.New(p.MaterializedPath()).MaterializedPath())
	}
}

func Test_Path_Child_Parent(t *testing.T) {
	assert := assert.New(t)
	root := ppath.Root()
	child := root.Child("docs", "id1", true)
	assert.Equal("/docs/", child.MaterializedPath())
	assert.Equal(root.MaterializedPath(), child.Parent().MaterializedPath())
}

func Test_Path_Rename(t *testing.T) {
	assert := assert.New(t)
	p := ppath.New("/a/old.txt")
	r := p.Rename("new.txt")
	assert.Equal("/a/new.txt", r.MaterializedPath())
}
