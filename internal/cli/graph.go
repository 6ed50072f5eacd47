package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storelink/pkg/depgraph"
	"github.com/matzehuels/storelink/pkg/errors"
)

// Graph output formats.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format string
		output string
		dev    bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the resolved dependency graph",
		Long: `Graph resolves the project's dependencies against the store, without
installing anything, and prints the result as JSON, Graphviz DOT or SVG.
Requirements the store cannot satisfy are shown as missing.`,
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

			g, err := engine.Graph(cmd.Context(), dir, dev)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := writeGraph(cmd, g, format, &buf); err != nil {
				return err
			}

			if output == "" {
				_, err := os.Stdout.Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote graph with %d packages", g.NodeCount()-1)
			printFile(output)
			if missing := g.Missing(); len(missing) > 0 {
				printWarning("%d requirements are not in the store; run install", len(missing))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&dev, "dev", false, "include devDependencies")
	return cmd
}

func writeGraph(cmd *cobra.Command, g *depgraph.Graph, format string, w io.Writer) error {
	switch format {
	case formatJSON:
		return depgraph.WriteJSON(g, w)
	case formatDOT:
		_, err := io.WriteString(w, depgraph.ToDOT(g))
		return err
	case formatSVG:
		svg, err := depgraph.RenderSVG(cmd.Context(), depgraph.ToDOT(g))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want json, dot or svg)", format)
}
