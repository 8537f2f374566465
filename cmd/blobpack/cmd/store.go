package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/blobpack/pkg/storage"
)

// storeCmd represents the store command
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Keep record buffers in the local store",
	Long: `Put, get and delete record buffers in the store under data_dir.

Examples:
  blobpack store put config.blob
  blobpack store get 2Dk3OSkBpxXKbVZwh3hKZCFjYHv --json
  blobpack store delete 2Dk3OSkBpxXKbVZwh3hKZCFjYHv`,
}

var storePutCmd = &cobra.Command{
	Use:   "put [file|-]",
	Short: "Store a record buffer and print its id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromJSON, _ := cmd.Flags().GetBool("json")
		cfg := configFrom(cmd)

		var data []byte
		var err error
		if fromJSON {
			if data, err = jsonInput(cmd, args); err != nil {
				return err
			}
			if data, err = jsonToBlob(data, namedLayout(cmd), cfg.DecodeOptions()); err != nil {
				return fmt.Errorf("failed to encode: %w", err)
			}
		} else if data, err = readInput(cmd, args); err != nil {
			return err
		}

		return withStore(cmd, func(s *storage.Store) error {
			id, err := s.Create(data)
			if err != nil {
				return fmt.Errorf("failed to store buffer: %w", err)
			}
			slog.Debug("stored buffer", "id", id, "bytes", len(data))
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Write a stored buffer to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		return withStore(cmd, func(s *storage.Store) error {
			data, err := s.Read(id)
			if err != nil {
				return err
			}
			if !asJSON {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			out, err := blobToJSON(data, namedLayout(cmd), configFrom(cmd).EncodeOptions())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
			return nil
		})
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored buffer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		return withStore(cmd, func(s *storage.Store) error {
			if err := s.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storePutCmd, storeGetCmd, storeDeleteCmd)

	storeCmd.PersistentFlags().String("data-dir", "", "Data directory for the store (default from config)")
	storeCmd.PersistentFlags().Bool("named", false, "Use the named-record layout for JSON")
	storePutCmd.Flags().Bool("json", false, "Input is JSON text to encode first")
	storePutCmd.Flags().Bool("jsonc", false, "Allow comments and trailing commas in JSON input")
	storeGetCmd.Flags().Bool("json", false, "Print the buffer as JSON")
}

// withStore opens the store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(s *storage.Store) error) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = configFrom(cmd).DataDir
	}
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	s, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
