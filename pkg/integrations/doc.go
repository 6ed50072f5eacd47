// Package integrations provides the HTTP client shared by registry API
// clients.
//
// [Client] wraps an [http.Client] with the [httputil.Cache] file cache,
// [httputil.RetryWithBackoff] and the HTTP hooks from
// [observability]. Registry-specific clients embed it:
//
//	client := npm.NewClient(cache, "https://registry.npmjs.org")
//	versions, err := client.FetchVersions(ctx, "left-pad", false)
//
// [httputil.Cache]: github.com/matzehuels/storelink/pkg/httputil.Cache
// [httputil.RetryWithBackoff]: github.com/matzehuels/storelink/pkg/httputil.RetryWithBackoff
// [observability]: github.com/matzehuels/storelink/pkg/observability
package integrations
