// Package resolve picks the exact version that satisfies an npm version
// requirement.
//
// Requirements use npm range syntax: exact versions, comparators, caret and
// tilde ranges, x-ranges, hyphen ranges, "||" alternatives and
// space-separated comparator sets. "latest", "*" and the empty string accept
// any version.
//
// A pre-release version only satisfies a range that itself names a
// pre-release, as in npm. For the any-version requirements, stable versions
// are preferred and a pre-release is chosen only when nothing else exists.
package resolve

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/storelink/pkg/errors"
	"github.com/matzehuels/storelink/pkg/store"
)

// MaxSatisfying returns the highest version in versions that satisfies
// requirement, or "" if none does. Entries that are not valid semver are
// ignored. An unparseable requirement is an INVALID_REQUIREMENT error.
func MaxSatisfying(requirement string, versions []string) (string, error) {
	parsed := parseVersions(versions)

	if IsAny(requirement) {
		return maxAny(parsed), nil
	}

	c, err := parseRequirement(requirement)
	if err != nil {
		return "", err
	}

	var best *semver.Version
	for _, v := range parsed {
		if !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return "", nil
	}
	return best.Original(), nil
}

// Resolve returns the highest version of name in catalog that satisfies
// requirement. ok is false when nothing satisfies it; that is not an error.
func Resolve(name, requirement string, catalog *store.Catalog) (version string, ok bool, err error) {
	version, err = MaxSatisfying(requirement, catalog.Versions(name))
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeInvalidRequirement, err, "%s@%s", name, requirement)
	}
	return version, version != "", nil
}

// Validate reports whether requirement is a range this package understands.
func Validate(requirement string) error {
	if IsAny(requirement) {
		return nil
	}
	_, err := parseRequirement(requirement)
	return err
}

// IsAny reports whether requirement accepts every version.
func IsAny(requirement string) bool {
	switch strings.TrimSpace(requirement) {
	case "", "*", "latest", "x", "X":
		return true
	}
	return false
}

func parseRequirement(requirement string) (*semver.Constraints, error) {
	c, err := semver.NewConstraint(strings.TrimSpace(requirement))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequirement, err, "unsupported version requirement %q", requirement)
	}
	return c, nil
}

func parseVersions(versions []string) []*semver.Version {
	out := make([]*semver.Version, 0, len(versions))
	for _, raw := range versions {
		v, err := semver.StrictNewVersion(raw)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// maxAny picks the version an any-version requirement resolves to. npm
// treats "*" as ">=0.0.0", which pre-releases do not satisfy, so the highest
// stable version wins even over a newer pre-release such as 2.0.0-beta.
// A store holding only pre-releases still resolves to the highest of them.
func maxAny(versions []*semver.Version) string {
	var stable, pre *semver.Version
	for _, v := range versions {
		if v.Prerelease() == "" {
			if stable == nil || v.GreaterThan(stable) {
				stable = v
			}
			continue
		}
		if pre == nil || v.GreaterThan(pre) {
			pre = v
		}
	}
	switch {
	case stable != nil:
		return stable.Original()
	case pre != nil:
		return pre.Original()
	}
	return ""
}
