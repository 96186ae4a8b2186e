package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/pagecraft/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document>",
	Short: "Check a saved document for problems",
	Long: `Decodes a document the way the engine would and reports the entries that
loading drops or repairs (duplicate ids, malformed components, orphans). With
--strict, lint warnings such as images without src also fail.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		report, err := validator.ValidateDocument(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		w := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			for _, warning := range report.Warnings {
				fmt.Fprintf(w, "warning: %s: %s\n", warning.NodeID, warning.Detail)
			}
		}
		if err := report.Err(strict); err != nil {
			return err
		}
		if !asJSON {
			fmt.Fprintf(w, "%s: %d components, schema v%d", args[0], report.Components, report.Version)
			if report.Migrated {
				fmt.Fprint(w, " (migrated from an older schema)")
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Fail on lint warnings too")
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
}
