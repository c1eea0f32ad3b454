// Package cli implements holdemctl, an operator tool for the room server's
// status surface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Config holds CLI configuration.
type Config struct {
	ServerURL string
	Output    string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("HOLDEM_SERVER", "http://localhost:3001"),
		Output:    "text",
	}
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := DefaultConfig()
	var client *Client

	rootCmd := &cobra.Command{
		Use:   "holdemctl",
		Short: "Inspect a running hold'em room server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output != "text" && cfg.Output != "json" {
				return errInvalidOutput(cfg.Output)
			}
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: HOLDEM_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	clientFn := func() *Client { return client }
	rootCmd.AddCommand(newHealthCmd(cfg, clientFn))
	rootCmd.AddCommand(newRoomsCmd(cfg, clientFn))

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
