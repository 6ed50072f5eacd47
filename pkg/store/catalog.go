package store

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Catalog maps package names to the set of exact versions known for them.
// It serves both as the index of store contents and as the record of which
// keys an install touched. Use NewCatalog; the zero value is not usable.
type Catalog struct {
	versions map[string]map[string]struct{}
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{versions: make(map[string]map[string]struct{})}
}

// Add records key. Adding a key twice is a no-op.
func (c *Catalog) Add(key PackageKey) {
	set, ok := c.versions[key.Name]
	if !ok {
		set = make(map[string]struct{})
		c.versions[key.Name] = set
	}
	set[key.Version] = struct{}{}
}

// Has reports whether key has been recorded.
func (c *Catalog) Has(key PackageKey) bool {
	_, ok := c.versions[key.Name][key.Version]
	return ok
}

// Versions returns the recorded versions of name in ascending semver order.
// Versions that do not parse as semver sort last, lexically.
func (c *Catalog) Versions(name string) []string {
	set := c.versions[name]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.SortFunc(out, compareVersions)
	return out
}

// Names returns every recorded package name, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.versions))
	for name := range c.versions {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of recorded keys.
func (c *Catalog) Len() int {
	n := 0
	for _, set := range c.versions {
		n += len(set)
	}
	return n
}

// Keys returns every recorded key, ordered by name then version.
func (c *Catalog) Keys() []PackageKey {
	keys := make([]PackageKey, 0, c.Len())
	for _, name := range c.Names() {
		for _, v := range c.Versions(name) {
			keys = append(keys, PackageKey{Name: name, Version: v})
		}
	}
	return keys
}

func compareVersions(a, b string) int {
	va, errA := semver.StrictNewVersion(a)
	vb, errB := semver.StrictNewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
