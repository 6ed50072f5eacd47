package cli

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storelink/pkg/buildinfo"
	"github.com/matzehuels/storelink/pkg/fetch"
	"github.com/matzehuels/storelink/pkg/httputil"
	"github.com/matzehuels/storelink/pkg/install"
	"github.com/matzehuels/storelink/pkg/integrations/npm"
	"github.com/matzehuels/storelink/pkg/observability"
	"github.com/matzehuels/storelink/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "storelink"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	dir      string // -C
	storeDir string // --store
	registry string // --registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "storelink installs npm dependencies as links into a shared store",
		Long: `storelink keeps exactly one copy of every package version in a shared store
and materialises each project's node_modules as symbolic links into it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			registerHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.dir, "dir", "C", ".", "project directory")
	flags.StringVar(&c.storeDir, "store", "", "store directory (overrides config and "+envStoreDir+")")
	flags.StringVar(&c.registry, "registry", "", "npm registry URL (overrides config and "+envRegistry+")")

	root.AddCommand(c.installCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// projectDir returns the absolute project directory.
func (c *CLI) projectDir() (string, error) {
	return filepath.Abs(c.dir)
}

// config loads the layered configuration and applies command-line flags.
func (c *CLI) config() (Config, error) {
	dir, err := c.projectDir()
	if err != nil {
		return Config{}, err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return cfg, err
	}
	if c.storeDir != "" {
		cfg.StoreDir = c.storeDir
	}
	if c.registry != "" {
		cfg.Registry = c.registry
	}
	return cfg, nil
}

// newEngine wires an install engine from configuration.
func (c *CLI) newEngine(cfg Config) (*install.Engine, error) {
	s, err := store.Open(cfg.StoreDir)
	if err != nil {
		return nil, err
	}
	versions, err := newVersionLister(cfg)
	if err != nil {
		return nil, err
	}
	return &install.Engine{
		Store: s,
		Installer: &fetch.NPM{
			Bin:           cfg.NPM,
			Registry:      cfg.Registry,
			IgnoreScripts: cfg.IgnoreScripts,
		},
		Versions: versions,
		Logger:   c.Logger,
	}, nil
}

func newVersionLister(cfg Config) (fetch.VersionLister, error) {
	if cfg.VersionSource != versionSourceRegistry {
		return &fetch.NPMView{Bin: cfg.NPM, Registry: cfg.Registry}, nil
	}
	cache, err := newCache(cfg)
	if err != nil {
		return nil, err
	}
	return &fetch.Registry{Client: npm.NewClient(cache, cfg.Registry)}, nil
}

func newCache(cfg Config) (*httputil.Cache, error) {
	dir, err := httpCacheDir()
	if err != nil {
		return nil, err
	}
	return httputil.NewCache(dir, cfg.CacheTTL.Duration)
}

func registerHooks(logger *log.Logger) {
	observability.Register(&logHooks{logger: logger})
}
