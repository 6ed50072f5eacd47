// Package fetch obtains packages the store does not have yet.
//
// An [Installer] downloads a set of dependencies into a scratch directory;
// the [Bridge] then hands the resulting node_modules tree to the collector
// so it lands in the store exactly as a pre-existing project tree would.
// A [VersionLister] answers which versions of a package are published, which
// [PickVersion] uses to choose a version for a dependency added by name.
package fetch

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/storelink/pkg/errors"
	"github.com/matzehuels/storelink/pkg/httputil"
	"github.com/matzehuels/storelink/pkg/manifest"
)

// Installer fetches deps (name → requirement) and everything they depend on
// into <dir>/node_modules.
type Installer interface {
	Install(ctx context.Context, dir string, deps map[string]string) error
}

// NPM installs through the npm CLI.
type NPM struct {
	// Bin is the npm executable. Empty means "npm" from PATH.
	Bin string
	// Registry overrides the registry npm downloads from.
	Registry string
	// IgnoreScripts skips lifecycle scripts of fetched packages.
	IgnoreScripts bool
}

func (n *NPM) bin() string {
	if n.Bin == "" {
		return "npm"
	}
	return n.Bin
}

// Install writes a throwaway package.json declaring deps into dir and runs
// `npm install` there. Any failure of the npm process is INSTALLER_FAILED.
func (n *NPM) Install(ctx context.Context, dir string, deps map[string]string) error {
	if err := manifest.WriteFetchManifest(dir, deps); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write fetch manifest")
	}

	args := []string{"install", "--no-package-lock", "--no-audit", "--no-fund", "--no-save"}
	if n.IgnoreScripts {
		args = append(args, "--ignore-scripts")
	}
	if n.Registry != "" {
		args = append(args, "--registry", n.Registry)
	}

	if _, err := run(ctx, dir, n.bin(), args...); err != nil {
		return err
	}
	return nil
}

// run executes bin in dir and returns its stdout. A failed process is
// reported with the tail of its combined output.
func run(ctx context.Context, dir, bin string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(bin); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInstallerFailed, err, "%s not found", bin)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		output := stderr.String() + stdout.String()
		failed := errors.Wrap(errors.ErrCodeInstallerFailed, err, "%s %s: %s",
			bin, strings.Join(args, " "), tail(output, 20))
		if transient(output) {
			return nil, &httputil.RetryableError{Err: failed}
		}
		return nil, failed
	}
	return stdout.Bytes(), nil
}

// npm error codes for network failures worth another attempt.
var transientCodes = []string{"ETIMEDOUT", "ECONNRESET", "ECONNREFUSED", "EAI_AGAIN", "ESOCKETTIMEDOUT"}

func transient(output string) bool {
	for _, code := range transientCodes {
		if strings.Contains(output, code) {
			return true
		}
	}
	return false
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
