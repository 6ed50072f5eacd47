// Package pkg holds the libraries behind storelink, a package installer that
// keeps one copy of every npm package version in a shared store and builds
// each project's node_modules out of symbolic links into it.
//
// # Layout
//
//  1. [store] - Store layout, package keys and the scanned catalog
//  2. [manifest] - package.json reading, editing and fetch requirements
//  3. [resolve] - Semver range matching against stored versions
//  4. [collect] - Moving freshly installed trees into the store
//  5. [fetch] - Installing missing packages with npm and listing versions
//  6. [link] - Materialising node_modules as links into the store
//  7. [install] - The install, add, remove and graph operations
//  8. [depgraph] - Dependency graph export (JSON, DOT, SVG)
//
// Supporting packages: [errors] for coded errors, [observability] for
// hooks, [httputil] and [integrations] for registry access.
//
// # Data flow
//
//	package.json
//	     ↓
//	[store] scan → [collect] existing node_modules
//	     ↓
//	[fetch] missing packages into scratch dir → [collect] into store
//	     ↓
//	[link] node_modules → store entries
//
// [store]: github.com/matzehuels/storelink/pkg/store
// [manifest]: github.com/matzehuels/storelink/pkg/manifest
// [resolve]: github.com/matzehuels/storelink/pkg/resolve
// [collect]: github.com/matzehuels/storelink/pkg/collect
// [fetch]: github.com/matzehuels/storelink/pkg/fetch
// [link]: github.com/matzehuels/storelink/pkg/link
// [install]: github.com/matzehuels/storelink/pkg/install
// [depgraph]: github.com/matzehuels/storelink/pkg/depgraph
// [errors]: github.com/matzehuels/storelink/pkg/errors
// [observability]: github.com/matzehuels/storelink/pkg/observability
// [httputil]: github.com/matzehuels/storelink/pkg/httputil
// [integrations]: github.com/matzehuels/storelink/pkg/integrations
package pkg
