package app

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/geoattest/sdk-go/core/eas"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the attestation schema and its UID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schema UID: %s\n", eas.DefaultSchemaUID().Hex())
			fmt.Fprintf(out, "Resolver:   %s\n", common.Address{}.Hex())
			fmt.Fprintf(out, "Revocable:  true\n\n")
			fmt.Fprintln(out, "Fields:")
			fmt.Fprintln(out, eas.FormatSchema(eas.SchemaString))
			return nil
		},
	}
}
