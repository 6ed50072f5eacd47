package npm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/storelink/pkg/httputil"
	"github.com/matzehuels/storelink/pkg/integrations"
)

const leftPad = `{
  "name": "left-pad",
  "dist-tags": {"latest": "1.3.0"},
  "versions": {"1.3.0": {}, "1.0.0": {}, "1.1.0": {}, "0.9.0": {}},
  "time": {
    "created": "2014-03-01T00:00:00.000Z",
    "modified": "2018-04-01T00:00:00.000Z",
    "0.9.0": "2014-03-01T00:00:00.000Z",
    "1.0.0": "2015-01-01T00:00:00.000Z",
    "1.1.0": "2016-01-01T00:00:00.000Z",
    "1.3.0": "2018-04-01T00:00:00.000Z"
  }
}`

func TestFetchPackument(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		switch r.URL.EscapedPath() {
		case "/left-pad":
			w.Write([]byte(leftPad))
		case "/@types%2fnode":
			w.Write([]byte(`{"name":"@types/node","dist-tags":{"latest":"20.0.0"},"versions":{"20.0.0":{}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cache, _ := httputil.NewCache(t.TempDir(), time.Hour)
	client := NewClient(cache, server.URL+"/")

	p, err := client.FetchPackument(context.Background(), "left-pad", false)
	if err != nil {
		t.Fatalf("FetchPackument() error: %v", err)
	}
	want := []string{"0.9.0", "1.0.0", "1.1.0", "1.3.0"}
	if !slices.Equal(p.Versions, want) {
		t.Errorf("Versions = %v, want %v", p.Versions, want)
	}
	if p.Latest != "1.3.0" {
		t.Errorf("Latest = %q, want 1.3.0", p.Latest)
	}

	// Second call is served from the cache.
	if _, err := client.FetchVersions(context.Background(), "left-pad", false); err != nil {
		t.Fatalf("FetchVersions() error: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("requests = %v, want one", paths)
	}

	scoped, err := client.FetchVersions(context.Background(), "@types/node", false)
	if err != nil {
		t.Fatalf("FetchVersions(scoped) error: %v", err)
	}
	if !slices.Equal(scoped, []string{"20.0.0"}) {
		t.Errorf("scoped versions = %v", scoped)
	}

	_, err = client.FetchVersions(context.Background(), "missing", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("missing package error = %v, want ErrNotFound", err)
	}
}

func TestSortByPublishTime(t *testing.T) {
	versions := []string{"2.0.0", "1.0.0", "1.10.0", "1.2.0"}
	published := map[string]string{
		"1.0.0": "2020-01-01T00:00:00Z",
		"2.0.0": "2020-06-01T00:00:00Z",
		// 1.10.0 backported after 2.0.0
		"1.10.0": "2021-01-01T00:00:00Z",
	}
	sortByPublishTime(versions, published)

	want := []string{"1.0.0", "2.0.0", "1.10.0", "1.2.0"}
	if !slices.Equal(versions, want) {
		t.Errorf("sortByPublishTime() = %v, want %v", versions, want)
	}
}
