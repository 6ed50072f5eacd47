// Package httputil provides the file cache and retry helpers used by the
// npm registry client.
//
// [Cache] keeps registry responses under $XDG_CACHE_HOME/storelink/http with a
// configurable TTL, so repeated `storelink add` runs do not hit the network
// for version listings they have already seen. `storelink cache clear`
// empties it.
//
// [Backoff] re-runs an operation on failures wrapped in [RetryableError]
// (connection errors, 5xx responses, npm network errors) with exponential
// backoff.
package httputil
