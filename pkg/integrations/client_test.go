package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/storelink/pkg/httputil"
)

func newTestClient(t *testing.T, srv *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	c, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}
	client := NewClient(c, headers)
	if srv != nil {
		client.http = srv.Client()
	}
	return client
}

func TestClientGet(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(map[string]string{"name": "left-pad"})
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp["name"] != "left-pad" {
		t.Errorf("Get() name = %q, want left-pad", resp["name"])
	}
	if !strings.HasPrefix(agent, "storelink/") {
		t.Errorf("User-Agent = %q, want storelink/...", agent)
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, map[string]string{"Accept": "application/json"})

	var resp map[string]any
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"Accept": "application/vnd.npm.install-v1+json"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if got != "application/vnd.npm.install-v1+json" {
		t.Errorf("Accept = %q", got)
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClientCached(t *testing.T) {
	client := newTestClient(t, nil, nil)

	fetches := 0
	fetch := func(v *[]string) func() error {
		return func() error {
			fetches++
			*v = []string{"1.0.0"}
			return nil
		}
	}

	var first []string
	if err := client.Cached(context.Background(), "npm:a", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second []string
	if err := client.Cached(context.Background(), "npm:a", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetches != 1 {
		t.Errorf("fetch count = %d, want 1", fetches)
	}
	if len(second) != 1 || second[0] != "1.0.0" {
		t.Errorf("cached value = %v", second)
	}

	var third []string
	_ = client.Cached(context.Background(), "npm:a", true, &third, fetch(&third))
	if fetches != 2 {
		t.Errorf("refresh should bypass cache, fetch count = %d", fetches)
	}
}

func TestClientCachedNilCache(t *testing.T) {
	client := NewClient(nil, nil)
	var v string
	err := client.Cached(context.Background(), "k", false, &v, func() error {
		v = "x"
		return nil
	})
	if err != nil || v != "x" {
		t.Errorf("Cached() = %v, %q", err, v)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantErr   bool
		wantType  error
		retryable bool
	}{
		{"200 OK", 200, false, nil, false},
		{"404 Not Found", 404, true, ErrNotFound, false},
		{"429 Too Many Requests", 429, true, ErrNetwork, true},
		{"500 Internal Server Error", 500, true, ErrNetwork, true},
		{"503 Service Unavailable", 503, true, ErrNetwork, true},
		{"403 Forbidden", 403, true, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkStatus(%d) = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantType)
			}
			if got := httputil.IsRetryable(err); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestEscapePkgName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"left-pad", "left-pad"},
		{"@types/node", "@types%2fnode"},
	}
	for _, tt := range tests {
		if got := EscapePkgName(tt.in); got != tt.want {
			t.Errorf("EscapePkgName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
