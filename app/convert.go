package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var (
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "convert [location]",
		Short: "Convert a location between formats",
		Long: `Convert reads a location from the argument or stdin and prints its
canonical form. Without --from the input format is auto-detected; without
--to the location is canonicalized in its own format. Coordinate integrity
warnings go to stderr and do not fail the conversion.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}
			input, err := readLocationInput(cmd, args)
			if err != nil {
				return err
			}

			payload, err := c.Convert(cmd.Context(), input, from, to)
			if err != nil {
				return err
			}

			for _, w := range payload.Warnings {
				if w.Ordinate >= 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s at ordinate %d: %s -> %s\n",
						w.Code, w.Ordinate, w.Source, w.Converted)
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.Code, w.Detail)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload.Location)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (default: auto-detect)")
	cmd.Flags().StringVar(&to, "to", "", "target format (default: canonicalize in place)")
	return cmd
}
