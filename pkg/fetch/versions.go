package fetch

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/storelink/pkg/errors"
	"github.com/matzehuels/storelink/pkg/httputil"
	"github.com/matzehuels/storelink/pkg/integrations"
	"github.com/matzehuels/storelink/pkg/integrations/npm"
	"github.com/matzehuels/storelink/pkg/store"
)

// VersionLister reports the published versions of a package.
type VersionLister interface {
	Versions(ctx context.Context, name string) ([]string, error)
}

// NPMView lists versions with `npm view <name>@* version`.
type NPMView struct {
	Bin      string
	Registry string
	// Backoff retries npm network failures. The zero value uses
	// httputil.DefaultBackoff.
	Backoff httputil.Backoff
}

// Versions runs npm view in the current directory. A package the registry
// does not know has no versions.
func (v *NPMView) Versions(ctx context.Context, name string) ([]string, error) {
	bin := v.Bin
	if bin == "" {
		bin = "npm"
	}
	args := []string{"view", name + "@*", "version"}
	if v.Registry != "" {
		args = append(args, "--registry", v.Registry)
	}

	backoff := v.Backoff
	if backoff.Attempts == 0 {
		backoff = httputil.DefaultBackoff
	}
	var out []byte
	err := backoff.Do(ctx, func() (err error) {
		out, err = run(ctx, "", bin, args...)
		return err
	})
	if err != nil {
		if strings.Contains(err.Error(), "E404") {
			return nil, nil
		}
		return nil, err
	}
	return parseViewOutput(name, out), nil
}

// parseViewOutput reads npm view output. With several matches npm prints
// one `<name>@<version> '<version>'` line each; with a single match it
// prints the bare version.
func parseViewOutput(name string, out []byte) []string {
	var versions []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			versions = append(versions, strings.Trim(fields[0], `'"`))
		case 2:
			if !strings.HasPrefix(fields[0], name+"@") {
				continue
			}
			versions = append(versions, strings.Trim(fields[1], `'"`))
		}
	}
	return versions
}

// Registry lists versions from the registry's package document.
type Registry struct {
	Client *npm.Client
}

// Versions returns the published versions, oldest first. An unknown package
// has no versions.
func (r *Registry) Versions(ctx context.Context, name string) ([]string, error) {
	versions, err := r.Client.FetchVersions(ctx, name, false)
	if stderrors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list versions of %s", name)
	}
	return versions, nil
}

// PickVersion chooses a version for a dependency added without one.
// Candidates are considered newest first, stable releases before
// pre-releases; the first one already in catalog wins. Otherwise the newest
// candidate is returned with fresh set, meaning it still has to be fetched.
func PickVersion(ctx context.Context, lister VersionLister, catalog *store.Catalog, name string) (version string, fresh bool, err error) {
	published, err := lister.Versions(ctx, name)
	if err != nil {
		return "", false, err
	}
	candidates := newestFirst(published)
	if len(candidates) == 0 {
		return "", false, errors.New(errors.ErrCodeNoVersions, "no published versions of %s", name)
	}
	for _, v := range candidates {
		if catalog.Has(store.PackageKey{Name: name, Version: v}) {
			return v, false, nil
		}
	}
	return candidates[0], true, nil
}

func newestFirst(versions []string) []string {
	parsed := make([]*semver.Version, 0, len(versions))
	for _, raw := range versions {
		if v, err := semver.StrictNewVersion(raw); err == nil {
			parsed = append(parsed, v)
		}
	}
	slices.SortStableFunc(parsed, func(a, b *semver.Version) int {
		aPre, bPre := a.Prerelease() != "", b.Prerelease() != ""
		if aPre != bPre {
			if aPre {
				return 1
			}
			return -1
		}
		return b.Compare(a)
	})
	out := make([]string, len(parsed))
	for i, v := range parsed {
		out[i] = v.Original()
	}
	return out
}
