package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/pagecraft/internal/presentation/graph"
	"github.com/aretw0/pagecraft/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <document>",
	Short: "Show the structure of a document",
	Long: `Prints the component tree of a document.

Formats:
- outline (default): nested list per page, styled when stdout is a terminal
- mermaid: a Mermaid flowchart (graph TD) from parents to children
- json: node count, roots, depth, pages and type histogram`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		highlight, _ := cmd.Flags().GetStringSlice("highlight")

		eng, err := openDocument(cmd, args[0], false)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		switch format {
		case "outline":
			outline := tui.Outline(eng.Tree().List())
			if isTerminal(cmd) {
				tui.PrintBanner(w)
				if styled, err := tui.NewRenderer()(outline); err == nil {
					outline = styled
				}
			}
			fmt.Fprint(w, outline)
		case "mermaid":
			fmt.Fprint(w, graph.GenerateMermaid(eng.Tree().List(), &graph.Overlay{Highlight: highlight}))
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(eng.Inspect())
		default:
			return fmt.Errorf("unknown format %q (outline, mermaid, json)", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("format", "f", "outline", "Output format: outline, mermaid, json")
	inspectCmd.Flags().StringSlice("highlight", nil, "Component ids to highlight in the mermaid output")
}
