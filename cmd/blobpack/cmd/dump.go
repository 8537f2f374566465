package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/blobpack/pkg/blob"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump [file|-]",
	Short: "Print a record buffer as an indented tree",
	Long: `Check a binary record buffer and print one line per record.

Example:
  blobpack dump config.blob`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		if err := blob.Check(data); err != nil {
			return err
		}
		return blob.Dump(cmd.OutOrStdout(), blob.FieldOf(data))
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
