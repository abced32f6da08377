// Package app assembles the geoattest command tree. Commands are thin
// wrappers over the client package; anything they can do, SDK callers can
// do directly.
package app

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geoattest/sdk-go/client"
	"github.com/geoattest/sdk-go/cmd/version"
)

// RootCmd creates the geoattest root command with all subcommands attached.
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "geoattest",
		Short: "Location attestation toolkit",
		Long: `geoattest converts locations between registered formats, inspects the
attestation schema, and detects the format of raw location input.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newFormatsCmd(),
		newDetectCmd(),
		newConvertCmd(),
		newSchemaCmd(),
		version.NewVersionCmd(),
	)
	return cmd
}

func newSDKClient() (*client.Client, error) {
	return client.New(client.WithLogger(zap.L()))
}
