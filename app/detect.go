package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// readLocationInput returns the location text: the positional argument when
// given, otherwise stdin.
func readLocationInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, "reading location from stdin")
	}
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", errors.New("no location given: pass it as an argument or on stdin")
	}
	return input, nil
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect [location]",
		Short: "Detect the format of a location value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSDKClient()
			if err != nil {
				return err
			}
			input, err := readLocationInput(cmd, args)
			if err != nil {
				return err
			}

			format, ok := c.DetectLocationFormat(input)
			if !ok {
				return errors.Errorf("no registered format accepts the input, supported: %s",
					strings.Join(c.SupportedLocationFormats(), ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), format)
			return nil
		},
	}
}
