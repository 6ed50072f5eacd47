package link

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/storelink/pkg/errors"
	"github.com/matzehuels/storelink/pkg/store"
)

type fixture struct {
	store   *store.Store
	catalog *store.Catalog
	used    *store.Catalog
	project string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	s, err := store.Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	project, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return &fixture{store: s, catalog: store.NewCatalog(), used: store.NewCatalog(), project: project}
}

// put creates a store entry for id with the given dependencies.
func (f *fixture) put(t *testing.T, id string, deps map[string]string) store.PackageKey {
	t.Helper()
	key, err := store.ParseKey(id)
	require.NoError(t, err)
	dir := f.store.Path(key)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := json.Marshal(map[string]any{"name": key.Name, "version": key.Version, "dependencies": deps})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), data, 0o644))
	f.catalog.Add(key)
	return key
}

func (f *fixture) linker() *Linker {
	return New(f.store, f.catalog, f.used, nil)
}

func (f *fixture) nodeModules() string {
	return filepath.Join(f.project, "node_modules")
}

func readlink(t *testing.T, path string) string {
	t.Helper()
	target, err := os.Readlink(path)
	require.NoError(t, err, path)
	return target
}

func TestLinkTransitive(t *testing.T) {
	f := newFixture(t)
	a := f.put(t, "a@1.0.0", map[string]string{"b": "^2.0.0"})
	f.put(t, "b@1.0.0", nil)
	b2 := f.put(t, "b@2.1.0", nil)

	l := f.linker()
	require.NoError(t, l.Link(context.Background(), f.nodeModules(), "a", "^1.0.0"))

	assert.Equal(t, f.store.Path(a), readlink(t, filepath.Join(f.nodeModules(), "a")))
	assert.Equal(t, f.store.Path(b2), readlink(t, filepath.Join(f.store.Path(a), "node_modules", "b")))
	assert.Equal(t, 2, l.Stats.Created)
	assert.True(t, f.used.Has(a))
	assert.True(t, f.used.Has(b2))
	assert.Equal(t, 2, f.used.Len())
}

func TestLinkIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.put(t, "a@1.0.0", map[string]string{"b": "*"})
	f.put(t, "b@2.1.0", nil)

	require.NoError(t, f.linker().Link(context.Background(), f.nodeModules(), "a", "1.0.0"))

	again := f.linker()
	require.NoError(t, again.Link(context.Background(), f.nodeModules(), "a", "1.0.0"))
	assert.Zero(t, again.Stats.Created)
	assert.Zero(t, again.Stats.Repaired)
	assert.Equal(t, f.store.Path(a), readlink(t, filepath.Join(f.nodeModules(), "a")))
}

func TestLinkSharedDependencyWalkedOnce(t *testing.T) {
	f := newFixture(t)
	f.put(t, "a@1.0.0", map[string]string{"c": "1.0.0"})
	f.put(t, "b@1.0.0", map[string]string{"c": "1.0.0"})
	c := f.put(t, "c@1.0.0", map[string]string{"d": "1.0.0"})
	f.put(t, "d@1.0.0", nil)

	l := f.linker()
	for _, name := range []string{"a", "b"} {
		require.NoError(t, l.Link(context.Background(), f.nodeModules(), name, "1.0.0"))
	}
	// a, b, a/c, b/c, c/d
	assert.Equal(t, 5, l.Stats.Created)
	assert.FileExists(t, filepath.Join(f.store.Path(c), "node_modules", "d", "package.json"))
}

func TestLinkScoped(t *testing.T) {
	f := newFixture(t)
	key := f.put(t, "@scope/pkg@0.2.0", nil)

	require.NoError(t, f.linker().Link(context.Background(), f.nodeModules(), "@scope/pkg", "~0.2.0"))
	assert.Equal(t, f.store.Path(key), readlink(t, filepath.Join(f.nodeModules(), "@scope", "pkg")))
}

func TestLinkCycle(t *testing.T) {
	f := newFixture(t)
	x := f.put(t, "x@1.0.0", map[string]string{"y": "1.0.0"})
	y := f.put(t, "y@1.0.0", map[string]string{"x": "1.0.0"})

	l := f.linker()
	require.NoError(t, l.Link(context.Background(), f.nodeModules(), "x", "latest"))
	assert.Equal(t, f.store.Path(y), readlink(t, filepath.Join(f.store.Path(x), "node_modules", "y")))
	assert.Equal(t, f.store.Path(x), readlink(t, filepath.Join(f.store.Path(y), "node_modules", "x")))
	assert.Equal(t, 3, l.Stats.Created)
}

func TestLinkUnresolved(t *testing.T) {
	f := newFixture(t)
	f.put(t, "a@1.0.0", map[string]string{"missing": "^1.0.0"})

	err := f.linker().Link(context.Background(), f.nodeModules(), "a", "^2.0.0")
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedDependency), "%v", err)
	_, statErr := os.Lstat(f.nodeModules())
	assert.True(t, os.IsNotExist(statErr), "node_modules should not be created")

	err = f.linker().Link(context.Background(), f.nodeModules(), "a", "^1.0.0")
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedDependency), "%v", err)
	assert.Contains(t, err.Error(), "a@1.0.0")
}

func TestLinkInvalidRequirement(t *testing.T) {
	f := newFixture(t)
	f.put(t, "a@1.0.0", nil)
	err := f.linker().Link(context.Background(), f.nodeModules(), "a", "not a range!")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRequirement), "%v", err)
}

func TestLinkRepairsStaleStoreLink(t *testing.T) {
	f := newFixture(t)
	old := f.put(t, "b@1.0.0", nil)
	current := f.put(t, "b@2.1.0", nil)

	dest := filepath.Join(f.nodeModules(), "b")
	require.NoError(t, os.MkdirAll(f.nodeModules(), 0o755))
	require.NoError(t, os.Symlink(f.store.Path(old), dest))

	l := f.linker()
	require.NoError(t, l.Link(context.Background(), f.nodeModules(), "b", "^2.0.0"))
	assert.Equal(t, f.store.Path(current), readlink(t, dest))
	assert.Equal(t, 1, l.Stats.Repaired)
}

func TestLinkRepairsDanglingLink(t *testing.T) {
	f := newFixture(t)
	key := f.put(t, "b@2.1.0", nil)

	dest := filepath.Join(f.nodeModules(), "b")
	require.NoError(t, os.MkdirAll(f.nodeModules(), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(f.project, "gone"), dest))

	require.NoError(t, f.linker().Link(context.Background(), f.nodeModules(), "b", "*"))
	assert.Equal(t, f.store.Path(key), readlink(t, dest))
}

func TestLinkKeepsForeignEntries(t *testing.T) {
	f := newFixture(t)
	f.put(t, "b@2.1.0", nil)

	local := filepath.Join(f.project, "packages", "b")
	require.NoError(t, os.MkdirAll(local, 0o755))
	require.NoError(t, os.MkdirAll(f.nodeModules(), 0o755))
	require.NoError(t, os.Symlink(local, filepath.Join(f.nodeModules(), "b")))

	realDir := filepath.Join(f.nodeModules(), "c")
	f.put(t, "c@1.0.0", nil)
	require.NoError(t, os.MkdirAll(realDir, 0o755))

	l := f.linker()
	require.NoError(t, l.Link(context.Background(), f.nodeModules(), "b", "*"))
	require.NoError(t, l.Link(context.Background(), f.nodeModules(), "c", "*"))
	assert.Equal(t, local, readlink(t, filepath.Join(f.nodeModules(), "b")))
	info, err := os.Lstat(realDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Zero(t, l.Stats.Created)
}

func TestUnlink(t *testing.T) {
	f := newFixture(t)
	key := f.put(t, "@scope/pkg@1.0.0", nil)
	require.NoError(t, f.linker().Link(context.Background(), f.nodeModules(), "@scope/pkg", "1.0.0"))

	removed, err := Unlink(f.nodeModules(), "@scope/pkg")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.DirExists(t, f.store.Path(key), "store entry must survive unlink")

	removed, err = Unlink(f.nodeModules(), "@scope/pkg")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = Unlink(filepath.Join(f.project, "nowhere"), "x")
	require.NoError(t, err)
	assert.False(t, removed)
}
