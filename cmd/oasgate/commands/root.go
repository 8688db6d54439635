package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags and the logger built from them.
type globalOptions struct {
	logLevel  string
	logFormat string
	logger    *slog.Logger
}

// NewRootCmd builds the oasgate command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "oasgate",
		Short: "Enforce OpenAPI 2.0 contracts on HTTP traffic",
		Long: `oasgate checks HTTP requests and responses against an OpenAPI 2.0 (Swagger) contract.

Requests must match a declared operation with valid parameters and body.
Responses must use a declared status code, carry the declared headers and
have a body that matches the response schema.

Commands:
  check       Validate recorded request/response exchanges
  routes      List the operations a contract declares
  proxy       Run a contract-enforcing reverse proxy
  mcp         Serve the validator as MCP tools over stdio
  version     Print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, or error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newCheckCmd(opts),
		newRoutesCmd(opts),
		newProxyCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return root
}

// newLogger builds the slog logger selected by the log flags.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", format)
	}
}
