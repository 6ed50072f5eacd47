package fetch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storelink/pkg/collect"
	"github.com/matzehuels/storelink/pkg/observability"
	"github.com/matzehuels/storelink/pkg/store"
)

// Bridge runs an Installer in a scratch directory inside the store and
// collects the result.
type Bridge struct {
	Installer Installer
	Store     *store.Store
	Collector *collect.Collector
	Logger    *log.Logger
}

// Fetch installs deps into a fresh scratch directory and folds the
// resulting node_modules into the store through the Collector. The scratch
// directory is removed afterwards, on success or failure.
func (b *Bridge) Fetch(ctx context.Context, deps map[string]string) (err error) {
	if len(deps) == 0 {
		return nil
	}
	hooks := observability.Install()
	hooks.OnFetchStart(ctx, len(deps))
	start := time.Now()
	defer func() { hooks.OnFetchComplete(ctx, len(deps), time.Since(start), err) }()

	scratch, err := b.Store.TempDir("fetch-")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil && b.Logger != nil {
			b.Logger.Warn("could not remove scratch directory", "dir", scratch, "err", rmErr)
		}
	}()

	if b.Logger != nil {
		b.Logger.Debug("running installer", "dir", scratch, "deps", len(deps))
	}
	if err := b.Installer.Install(ctx, scratch, deps); err != nil {
		return err
	}
	return b.Collector.Collect(filepath.Join(scratch, collect.NodeModules))
}
