package npm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/storelink/pkg/httputil"
	"github.com/matzehuels/storelink/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// Packument is the subset of a registry package document storelink reads.
type Packument struct {
	Name     string   `json:"name"`
	Latest   string   `json:"latest"`
	Versions []string `json:"versions"` // ascending by publish time
}

type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client. An empty baseURL selects
// [DefaultRegistry]; a nil cache disables response caching.
func NewClient(cache *httputil.Cache, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistry
	}
	if cache != nil {
		cache = cache.Namespace("npm:")
	}
	return &Client{
		Client:  integrations.NewClient(cache, map[string]string{"Accept": "application/json"}),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchPackument returns the published versions of pkg, oldest first.
func (c *Client) FetchPackument(ctx context.Context, pkg string, refresh bool) (*Packument, error) {
	pkg = integrations.NormalizePkgName(pkg)
	key := c.baseURL + "|" + pkg

	var p Packument
	err := c.Cached(ctx, key, refresh, &p, func() error {
		return c.fetch(ctx, pkg, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchVersions is FetchPackument reduced to the version list.
func (c *Client) FetchVersions(ctx context.Context, pkg string, refresh bool) ([]string, error) {
	p, err := c.FetchPackument(ctx, pkg, refresh)
	if err != nil {
		return nil, err
	}
	return p.Versions, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, p *Packument) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.EscapePkgName(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	versions := make([]string, 0, len(data.Versions))
	for v := range data.Versions {
		versions = append(versions, v)
	}
	sortByPublishTime(versions, data.Time)

	*p = Packument{
		Name:     data.Name,
		Latest:   data.DistTags.Latest,
		Versions: versions,
	}
	return nil
}

// sortByPublishTime orders versions by their entry in the packument time map.
// Versions without a timestamp sort after timestamped ones, by semver.
func sortByPublishTime(versions []string, published map[string]string) {
	stamp := func(v string) (time.Time, bool) {
		s, ok := published[v]
		if !ok {
			return time.Time{}, false
		}
		t, err := time.Parse(time.RFC3339, s)
		return t, err == nil
	}
	slices.SortStableFunc(versions, func(a, b string) int {
		ta, oka := stamp(a)
		tb, okb := stamp(b)
		switch {
		case oka && okb && !ta.Equal(tb):
			return ta.Compare(tb)
		case oka && !okb:
			return -1
		case !oka && okb:
			return 1
		}
		return compareSemver(a, b)
	})
}

func compareSemver(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

type registryResponse struct {
	Name     string              `json:"name"`
	DistTags distTags            `json:"dist-tags"`
	Versions map[string]struct{} `json:"versions"`
	Time     map[string]string   `json:"time"`
}

type distTags struct {
	Latest string `json:"latest"`
}
