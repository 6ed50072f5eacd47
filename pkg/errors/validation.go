package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength is the npm registry's limit on package name length.
const maxNameLength = 214

// ValidatePackageName checks that name is safe to use as a path below a
// node_modules or store directory: one segment, or "@scope/name".
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPackage, "package name longer than %d characters", maxNameLength)
	}
	if strings.ContainsAny(name, "\\\x00") || strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidPackage, "package name %q contains invalid characters", name)
	}

	segments := strings.Split(name, "/")
	switch {
	case len(segments) > 2:
		return New(ErrCodeInvalidPackage, "package name %q has too many path segments", name)
	case len(segments) == 2 && !strings.HasPrefix(segments[0], "@"):
		return New(ErrCodeInvalidPackage, "package name %q: only scoped names may contain '/'", name)
	}
	for _, seg := range segments {
		if err := checkSegment(name, strings.TrimPrefix(seg, "@")); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVersion checks that an exact version can name a store entry.
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidPackage, "version cannot be empty")
	}
	if strings.ContainsAny(version, "/\\\x00") || strings.IndexFunc(version, unicode.IsSpace) >= 0 {
		return New(ErrCodeInvalidPackage, "invalid version %q", version)
	}
	return checkSegment(version, version)
}

func checkSegment(whole, seg string) error {
	switch seg {
	case "":
		return New(ErrCodeInvalidPackage, "%q has an empty path segment", whole)
	case ".", "..":
		return New(ErrCodeInvalidPackage, "%q contains a relative path segment", whole)
	}
	return nil
}

var npmPackageNameRegex = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)

// ValidateNpmPackageName applies the npm naming rules on top of
// ValidatePackageName: lowercase, URL-safe, no leading dot or underscore.
func ValidateNpmPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if strings.ToLower(name) != name {
		return New(ErrCodeInvalidPackage, "npm package names must be lowercase: %q", name)
	}
	if !npmPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid npm package name: %q", name)
	}
	return nil
}
