package app

import (
	"fmt"
	"strings"

	markdown "github.com/fbiville/markdown-table-formatter/pkg/markdown"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newFormatsCmd() *cobra.Command {
	var asMarkdown bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List registered location formats and media types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}

			var rows [][]string
			for _, id := range c.SupportedLocationFormats() {
				ext, ok := c.LocationExtension(id)
				if !ok {
					continue
				}
				rows = append(rows, []string{
					id,
					ext.DisplayName(),
					strings.Join(ext.Variants(), ", "),
				})
			}

			out := cmd.OutOrStdout()
			if asMarkdown {
				table, err := markdown.NewTableFormatterBuilder().
					WithPrettyPrint().
					Build("Format", "Name", "Variants").
					Format(rows)
				if err != nil {
					return errors.Wrap(err, "formatting location format table")
				}
				fmt.Fprint(out, table)
			} else {
				fmt.Fprintln(out, "Location formats (detection order):")
				for _, row := range rows {
					fmt.Fprintf(out, "  %-10s %s\n", row[0], row[1])
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Media types:")
			for _, mime := range c.SupportedMediaTypes() {
				fmt.Fprintf(out, "  %s\n", mime)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "render location formats as a markdown table")
	return cmd
}
