package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasgate/internal/mcpserver"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the validator as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools:
  validate_request    Check a request against a contract
  validate_response   Check a response against the operation that produced it
  list_routes         List the operations a contract declares

Defaults are read from OASGATE_* environment variables; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			slog.SetDefault(opts.logger)
			return mcpserver.Run(cmd.Context())
		},
	}
}
