package store

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/storelink/pkg/errors"
)

// PackageKey identifies one stored package: an npm name (optionally scoped)
// and an exact version.
type PackageKey struct {
	Name    string
	Version string
}

// String returns "name@version".
func (k PackageKey) String() string {
	return k.Name + "@" + k.Version
}

// Scope returns the "@scope" part of a scoped name, or "".
func (k PackageKey) Scope() string {
	scope, _, ok := splitScope(k.Name)
	if !ok {
		return ""
	}
	return scope
}

// Dir returns the store-relative directory of the key:
// "name@version" or "@scope/name@version".
func (k PackageKey) Dir() string {
	return filepath.FromSlash(k.String())
}

// Validate checks that the key has a usable name and a version.
func (k PackageKey) Validate() error {
	if err := errors.ValidatePackageName(k.Name); err != nil {
		return err
	}
	if err := errors.ValidateVersion(k.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPackage, err, "%s", k.Name)
	}
	return nil
}

// ParseKey parses "name@version" or "@scope/name@version". The version
// separator is the last "@" after the scope.
func ParseKey(s string) (PackageKey, error) {
	prefix := ""
	rest := s
	if scope, name, ok := splitScope(s); ok {
		prefix = scope + "/"
		rest = name
	}
	i := strings.LastIndex(rest, "@")
	if i <= 0 || i == len(rest)-1 {
		return PackageKey{}, errors.New(errors.ErrCodeStoreCorrupt, "%q is not of the form name@version", s)
	}
	return PackageKey{Name: prefix + rest[:i], Version: rest[i+1:]}, nil
}

func splitScope(name string) (scope, rest string, ok bool) {
	if !strings.HasPrefix(name, "@") {
		return "", name, false
	}
	scope, rest, ok = strings.Cut(name, "/")
	if !ok || scope == "@" || rest == "" {
		return "", name, false
	}
	return scope, rest, true
}
