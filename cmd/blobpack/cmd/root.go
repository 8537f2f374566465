/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/blobpack/pkg/config"
)

type configKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blobpack",
	Short: "blobpack - compact binary records and JSON",
	Long: `blobpack converts between JSON and a compact binary TLV record format,
checks and dumps record buffers and keeps them in a local store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
		}
		logger, err := newLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		slog.Debug("configuration loaded", "path", configPath, "data_dir", cfg.DataDir)

		cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.GetDefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// loadConfig reads the file at path. A missing file falls back to the
// defaults unless the path was given explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if !config.ConfigExists(path) {
		if explicit {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// configFrom returns the configuration loaded by the root command.
func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}
