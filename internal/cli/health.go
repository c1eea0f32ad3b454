package cli

import "github.com/spf13/cobra"

func newHealthCmd(cfg *Config, client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Health
			if err := client().Get(cmd.Context(), "/health", &result); err != nil {
				return err
			}
			return NewOutput(cfg.Output, cmd.OutOrStdout()).Health(result)
		},
	}
}
