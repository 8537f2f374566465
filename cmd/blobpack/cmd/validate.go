package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/blobpack/pkg/blob"
	"github.com/ssargent/blobpack/pkg/blobmsg"
)

var errShapeMismatch = errors.New("buffer does not match the signature")

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Check the structure of a record buffer",
	Long: `Check that a binary record buffer is well formed and, with --signature,
that the children of its root match a shape signature.

Signature characters: i (int32), s (string), t (table), a (array), v (any),
{...} (a table whose children match the inner signature), [...] (an array).

Examples:
  blobpack validate config.blob
  blobpack validate config.blob --signature '{ss}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, _ := cmd.Flags().GetString("signature")

		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		if err := validateBuffer(data, sig, namedLayout(cmd)); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("signature", "", "Shape signature the root's children must match")
	validateCmd.Flags().Bool("named", false, "Also check the named-record layout")
}

// validateBuffer runs the structural check, the named-layout check when
// named is set, and the signature check when sig is not empty.
func validateBuffer(data []byte, sig string, named bool) error {
	if err := blob.Check(data); err != nil {
		return err
	}
	root := blob.FieldOf(data)
	if named && blobmsg.CheckArray(root, blob.TypeUnspec) < 0 {
		return fmt.Errorf("invalid named record layout")
	}
	if sig != "" && !blob.Validate(root, sig) {
		return fmt.Errorf("%w %q", errShapeMismatch, sig)
	}
	return nil
}
