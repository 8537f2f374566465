package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [file|-]",
	Short: "Encode JSON into a record buffer",
	Long: `Encode JSON text into a binary record buffer.

Objects become key/value tables, or tables of named records with --named.
The input is read from the file argument or stdin. With --jsonc, comments
and trailing commas are stripped first.

Examples:
  blobpack encode config.json -o config.blob
  cat config.json | blobpack encode --named > config.blob`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		cfg := configFrom(cmd)

		data, err := jsonInput(cmd, args)
		if err != nil {
			return err
		}

		named := namedLayout(cmd)
		buf, err := jsonToBlob(data, named, cfg.DecodeOptions())
		if err != nil {
			return fmt.Errorf("failed to encode: %w", err)
		}
		slog.Debug("encoded buffer", "input_bytes", len(data), "output_bytes", len(buf), "named", named)

		if output == "" || output == "-" {
			_, err = cmd.OutOrStdout().Write(buf)
			return err
		}
		if err := os.WriteFile(output, buf, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	encodeCmd.Flags().Bool("named", false, "Use the named-record layout")
	encodeCmd.Flags().Bool("jsonc", false, "Allow comments and trailing commas in the input")
}
