package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/ssargent/blobpack/pkg/blob"
	"github.com/ssargent/blobpack/pkg/blobmsg"
	"github.com/ssargent/blobpack/pkg/ujson"
)

// jsonToBlob decodes JSON text into a record buffer, using the named layout
// when named is set.
func jsonToBlob(data []byte, named bool, opts ujson.Options) ([]byte, error) {
	if named {
		var b blobmsg.Buf
		if err := b.FromJSON(data, opts); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	}
	var b blob.Buf
	if err := b.FromJSON(data, opts); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// blobToJSON checks a record buffer and renders it as JSON text.
func blobToJSON(data []byte, named bool, opts ujson.EncodeOptions) ([]byte, error) {
	if err := blob.Check(data); err != nil {
		return nil, err
	}
	root := blob.FieldOf(data)
	if named {
		return blobmsg.ToJSON(root, opts), nil
	}
	return blob.ToJSON(root, opts), nil
}

// readInput reads the file named by the first argument, or stdin when there
// is none or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// namedLayout resolves the --named flag against the configured default.
func namedLayout(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("named") {
		named, _ := cmd.Flags().GetBool("named")
		return named
	}
	return configFrom(cmd).Encode.Named
}

// jsonInput reads the JSON input and strips JSONC comments and trailing
// commas when --jsonc or decode.comments asks for it.
func jsonInput(cmd *cobra.Command, args []string) ([]byte, error) {
	data, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}
	comments := configFrom(cmd).Decode.Comments
	if cmd.Flags().Changed("jsonc") {
		comments, _ = cmd.Flags().GetBool("jsonc")
	}
	if comments {
		data = jsonc.ToJSON(data)
	}
	return data, nil
}
