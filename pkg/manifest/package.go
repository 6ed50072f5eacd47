// Package manifest reads and edits package.json files.
//
// [ReadPackage] decodes the fields the installer needs from any package
// directory. [Project] wraps the manifest of the project being installed
// and can rewrite its dependency maps without disturbing the rest of the
// document: unrelated keys, their order and their values are preserved.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matzehuels/storelink/pkg/errors"
	"github.com/matzehuels/storelink/pkg/store"
)

// FileName is the manifest file every package directory carries.
const FileName = "package.json"

// Package holds the parts of a package.json the installer reads.
type Package struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ReadPackage decodes <dir>/package.json.
func ReadPackage(dir string) (*Package, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no %s in %s", FileName, dir)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}
	return decodePackage(path, data)
}

func decodePackage(path string, data []byte) (*Package, error) {
	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return &pkg, nil
}

// Key returns the store key of the package. A manifest without name or
// version cannot be stored and is reported as INVALID_MANIFEST.
func (p *Package) Key() (store.PackageKey, error) {
	if p.Name == "" || p.Version == "" {
		return store.PackageKey{}, errors.New(errors.ErrCodeInvalidManifest,
			"package.json must declare name and version (name=%q version=%q)", p.Name, p.Version)
	}
	key := store.PackageKey{Name: p.Name, Version: p.Version}
	if err := key.Validate(); err != nil {
		return store.PackageKey{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", key)
	}
	return key, nil
}
