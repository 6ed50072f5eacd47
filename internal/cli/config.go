package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/storelink/pkg/errors"
)

// Version sources for unversioned adds.
const (
	versionSourceNPM      = "npm"
	versionSourceRegistry = "registry"
)

// Environment variables consulted by loadConfig.
const (
	envStoreDir      = "STORELINK_STORE_DIR"
	envNPM           = "STORELINK_NPM"
	envRegistry      = "STORELINK_REGISTRY"
	envVersionSource = "STORELINK_VERSION_SOURCE"
	envIgnoreScripts = "STORELINK_IGNORE_SCRIPTS"
	envSavePrefix    = "STORELINK_SAVE_PREFIX"
)

// Config is the merged configuration for one command run.
type Config struct {
	StoreDir      string   `toml:"store_dir"`
	NPM           string   `toml:"npm"`
	Registry      string   `toml:"registry"`
	VersionSource string   `toml:"version_source"`
	SavePrefix    string   `toml:"save_prefix"`
	IgnoreScripts bool     `toml:"ignore_scripts"`
	CacheTTL      duration `toml:"cache_ttl"`
}

// duration reads TOML strings such as "24h" or "90m".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() Config {
	return Config{
		NPM:           "npm",
		VersionSource: versionSourceNPM,
		SavePrefix:    "^",
		CacheTTL:      duration{24 * time.Hour},
	}
}

// loadConfig layers defaults, the user config file, a .env file in dir and
// the environment, in increasing precedence. Values in .env never override
// variables already set in the environment.
func loadConfig(dir string) (Config, error) {
	cfg := defaultConfig()

	path, err := configPath()
	if err == nil {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s", path)
			}
		}
	}

	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "load %s", envFile)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if cfg.StoreDir == "" {
		if cfg.StoreDir, err = defaultStoreDir(); err != nil {
			return cfg, fmt.Errorf("locate store: %w", err)
		}
	}
	return cfg, cfg.validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for env, field := range map[string]*string{
		envStoreDir:      &c.StoreDir,
		envNPM:           &c.NPM,
		envRegistry:      &c.Registry,
		envVersionSource: &c.VersionSource,
		envSavePrefix:    &c.SavePrefix,
	} {
		if v, ok := lookup(env); ok && v != "" {
			*field = v
		}
	}
	if v, ok := lookup(envIgnoreScripts); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", envIgnoreScripts)
		}
		c.IgnoreScripts = b
	}
	return nil
}

func (c *Config) validate() error {
	switch c.VersionSource {
	case versionSourceNPM, versionSourceRegistry:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "version_source must be %q or %q, got %q",
			versionSourceNPM, versionSourceRegistry, c.VersionSource)
	}
	switch c.SavePrefix {
	case "^", "~", "":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "save_prefix must be \"^\", \"~\" or empty, got %q", c.SavePrefix)
	}
	return nil
}

// configPath returns $XDG_CONFIG_HOME/storelink/config.toml.
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// defaultStoreDir returns $XDG_DATA_HOME/storelink/store.
func defaultStoreDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName, "store"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "store"), nil
}

// cacheDir returns the registry metadata cache directory using the XDG
// standard (~/.cache/storelink/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func httpCacheDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "http"), nil
}
