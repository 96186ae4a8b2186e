package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/pagecraft/pkg/render"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <document>",
	Short: "Render a document to HTML",
	Long: `Renders the component tree of a document (JSON or YAML, "-" for stdin) to HTML.
By default the markup fragment is printed; --export wraps it in a standalone page
with the given CSS. --publish uploads the export to the configured bucket.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetString("page")
		export, _ := cmd.Flags().GetBool("export")
		cssPath, _ := cmd.Flags().GetString("css")
		title, _ := cmd.Flags().GetString("title")
		out, _ := cmd.Flags().GetString("output")
		publish, _ := cmd.Flags().GetString("publish")

		eng, err := openDocument(cmd, args[0], false)
		if err != nil {
			return err
		}

		markup := eng.RenderHTML()
		if page != "" {
			markup = eng.RenderPage(page)
		}
		if !export && publish == "" {
			return writeOutput(cmd, out, []byte(markup+"\n"))
		}

		var css string
		if cssPath != "" {
			data, err := os.ReadFile(cssPath)
			if err != nil {
				return fmt.Errorf("read css: %w", err)
			}
			css = string(data)
		}
		if title == "" {
			title = app.cfg.Preview.Title
		}
		html := render.Document(markup, css, title)

		if publish == "" {
			return writeOutput(cmd, out, []byte(html))
		}
		publisher, err := openPublisher(app.cfg.Publish)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		url, err := publisher.Publish(ctx, publish, []byte(html))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("page", "", "Render only the roots of this page")
	renderCmd.Flags().Bool("export", false, "Wrap the markup in a standalone HTML document")
	renderCmd.Flags().String("css", "", "CSS file embedded by --export")
	renderCmd.Flags().String("title", "", "Document title used by --export")
	renderCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	renderCmd.Flags().String("publish", "", "Upload the export under this key")
}
