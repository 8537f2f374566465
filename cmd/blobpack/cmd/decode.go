package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode [file|-]",
	Short: "Print a record buffer as JSON",
	Long: `Check a binary record buffer and print it as JSON text.

Examples:
  blobpack decode config.blob
  blobpack decode --named --escape-unicode < config.blob`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		opts := configFrom(cmd).EncodeOptions()
		if cmd.Flags().Changed("escape-unicode") {
			opts.EscapeUnicode, _ = cmd.Flags().GetBool("escape-unicode")
		}

		out, err := blobToJSON(data, namedLayout(cmd), opts)
		if err != nil {
			return fmt.Errorf("failed to decode: %w", err)
		}
		slog.Debug("decoded buffer", "input_bytes", len(data))

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Bool("named", false, "Read table keys from record names")
	decodeCmd.Flags().Bool("escape-unicode", false, "Write non-ASCII characters as \\uXXXX escapes")
}
