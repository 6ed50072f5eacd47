package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a package doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName trims whitespace and lowercases an npm package name.
func NormalizePkgName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EscapePkgName encodes a package name as a single registry path segment.
// Scoped names keep their leading @ and have the separating slash encoded,
// which is the form the npm registry expects ("@types%2fnode").
func EscapePkgName(name string) string {
	return strings.Replace(name, "/", "%2f", 1)
}
