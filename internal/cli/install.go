package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storelink/pkg/install"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var production bool

	cmd := &cobra.Command{
		Use:     "install",
		Aliases: []string{"i"},
		Short:   "Link every declared dependency into node_modules",
		Long: `Install folds any existing node_modules into the store, fetches whatever
the store cannot satisfy, and links each dependency of package.json into
node_modules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			engine, err := c.newEngine(cfg)
			if err != nil {
				return err
			}
			dir, err := c.projectDir()
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(cmd.Context(), "Installing dependencies...")
			spinner.Start()
			res, err := engine.Install(cmd.Context(), dir, install.Options{Production: production})
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done("Install complete")
			printResult(res)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&production, "production", "P", false, "skip devDependencies")
	return cmd
}

// printResult summarises an install run.
func printResult(res *install.Result) {
	printSuccess("%d packages in use", len(res.Used))
	printStats(
		stat{"linked", res.Linked},
		stat{"fetched", res.Fetched},
		stat{"moved", res.Moved},
		stat{"discarded", res.Discarded},
		stat{"unlinked", res.Unlinked},
	)
	for _, key := range res.Used {
		printDetail("%s", key)
	}
}

type stat struct {
	label string
	n     int
}

func (s stat) String() string { return fmt.Sprintf("%d %s", s.n, s.label) }
