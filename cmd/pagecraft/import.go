package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <document> [payload]",
	Short: "Import a generated subtree or a template into a document",
	Long: `Flattens a nested payload (JSON or YAML, "-" for stdin) into the document in
one step and writes the document back. --template imports a library snippet
instead of a payload. A missing document file is created.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		template, _ := cmd.Flags().GetString("template")
		list, _ := cmd.Flags().GetBool("list-templates")
		out, _ := cmd.Flags().GetString("output")

		eng, err := openDocument(cmd, args[0], true)
		if err != nil {
			return err
		}
		if list {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(eng.Templates().SnippetNames(), "\n"))
			return nil
		}

		var ids []string
		switch {
		case template != "":
			ids, err = eng.ImportTemplate(template, parent)
		case len(args) == 2:
			var payload []byte
			if payload, err = readInput(cmd, args[1]); err != nil {
				return err
			}
			ids, err = eng.ImportJSON(payload, parent)
		default:
			return fmt.Errorf("a payload or --template is required")
		}
		if err != nil {
			return err
		}

		data, err := eng.Save()
		if err != nil {
			return err
		}
		if out == "" {
			out = args[0]
		}
		app.logger.Info("components imported", "count", len(ids), "parent", parent, "target", out)
		return writeOutput(cmd, out, append(data, '\n'))
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("parent", "", "Import under this component (default: as roots)")
	importCmd.Flags().String("template", "", "Import a named template snippet")
	importCmd.Flags().Bool("list-templates", false, "List the template snippets and exit")
	importCmd.Flags().StringP("output", "o", "", "Write the document here instead of back to its file (\"-\" for stdout)")
}
