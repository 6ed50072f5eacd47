package manifest

import (
	"strings"

	"github.com/matzehuels/storelink/pkg/errors"
)

// ParseSpecifier splits a command-line package argument into name and
// requirement: "left-pad", "left-pad@^1.3.0", "@types/node@20". The
// requirement is "" when none is given. The name is validated as an npm
// package name.
func ParseSpecifier(raw string) (name, requirement string, err error) {
	raw = strings.TrimSpace(raw)
	name = raw
	if strings.HasPrefix(raw, "@") {
		if i := strings.Index(raw[1:], "@"); i >= 0 {
			name, requirement = raw[:i+1], raw[i+2:]
		}
	} else if before, after, ok := strings.Cut(raw, "@"); ok {
		name, requirement = before, after
	}

	if err := errors.ValidateNpmPackageName(name); err != nil {
		return "", "", err
	}
	return name, strings.TrimSpace(requirement), nil
}
