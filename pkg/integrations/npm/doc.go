// Package npm fetches package documents ("packuments") from an npm-compatible
// registry.
//
// storelink only needs the list of published versions and the latest tag,
// so [Client.FetchPackument] reduces the registry response to a [Packument]
// with versions ordered by publish time, which is the order `npm view`
// reports them in. Responses are cached under the "npm:" namespace of the
// shared [httputil.Cache].
//
// [httputil.Cache]: github.com/matzehuels/storelink/pkg/httputil.Cache
package npm
