package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storelink/pkg/store"
)

// storeCommand creates the store inspection command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the shared package store",
	}

	cmd.AddCommand(c.storePathCommand())
	cmd.AddCommand(c.storeListCommand())

	return cmd
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the store directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Println(cfg.StoreDir)
			return nil
		},
	}
}

// storeListCommand creates the "store ls" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls [package]",
		Aliases: []string{"list"},
		Short:   "List stored packages, or the stored versions of one package",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.StoreDir)
			if err != nil {
				return err
			}
			catalog, err := s.Scan(c.Logger)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				versions := catalog.Versions(args[0])
				if len(versions) == 0 {
					printInfo("No versions of %s in the store", args[0])
					return nil
				}
				for _, v := range versions {
					fmt.Println(v)
				}
				return nil
			}

			if catalog.Len() == 0 {
				printInfo("Store is empty")
				printDetail("Directory: %s", s.Root)
				return nil
			}
			for _, name := range catalog.Names() {
				printKeyValue(name, joinVersions(catalog.Versions(name)))
			}
			printStats(stat{"packages", len(catalog.Names())}, stat{"versions", catalog.Len()})
			return nil
		},
	}
}

func joinVersions(versions []string) string {
	out := ""
	for i, v := range versions {
		if i > 0 {
			out += StyleDim.Render(", ")
		}
		out += v
	}
	return out
}
