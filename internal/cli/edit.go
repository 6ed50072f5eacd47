package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/storelink/pkg/install"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var (
		dev    bool
		exact  bool
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "add <package[@requirement]>...",
		Short: "Declare dependencies in package.json and install them",
		Long: `Add declares each package in package.json and installs. A package given
without a requirement gets the newest published version, unless the store
already holds a published version, which is preferred.`,
		Example: `  storelink add left-pad
  storelink add @types/node@^20 --dev
  storelink add lodash --exact`,
		Args: cobra.MinimumNArgs(1),
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

			opts := install.AddOptions{Dev: dev, Exact: exact, SavePrefix: cfg.SavePrefix}
			if cmd.Flags().Changed("save-prefix") {
				opts.SavePrefix = prefix
			}
			if opts.SavePrefix == "" {
				opts.Exact = true
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Adding dependencies...")
			spinner.Start()
			added, res, err := engine.Add(cmd.Context(), dir, args, opts)
			spinner.Stop()
			if err != nil {
				return err
			}

			for _, a := range added {
				section := "dependencies"
				if a.Dev {
					section = "devDependencies"
				}
				printSuccess("Added %s %s", StyleHighlight.Render(a.Name+"@"+a.Requirement), StyleDim.Render("to "+section))
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dev, "dev", "D", false, "save to devDependencies")
	cmd.Flags().BoolVarP(&exact, "exact", "E", false, "save the exact version instead of a range")
	cmd.Flags().StringVar(&prefix, "save-prefix", "^", "range prefix for picked versions (^, ~ or empty)")
	return cmd
}

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <package>...",
		Aliases: []string{"rm", "uninstall"},
		Short:   "Unlink packages and drop them from package.json",
		Long: `Remove deletes node_modules/<package> and drops the package from both
dependency maps. Packages that are neither linked nor declared are ignored.
The store itself is never modified.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.projectDir()
			if err != nil {
				return err
			}
			engine := &install.Engine{Logger: c.Logger}
			res, err := engine.Remove(cmd.Context(), dir, args)
			if err != nil {
				return err
			}

			if len(res.Unlinked) == 0 && len(res.Dropped) == 0 {
				printInfo("Nothing to remove")
				return nil
			}
			for _, name := range res.Dropped {
				printSuccess("Removed %s", StyleHighlight.Render(name))
			}
			for _, name := range res.Unlinked {
				printDetail("unlinked node_modules/%s", name)
			}
			return nil
		},
	}
}
