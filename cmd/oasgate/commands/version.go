package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasgate"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if short {
				Writef(out, "%s\n", oasgate.Version())
				return nil
			}
			Writef(out, "oasgate %s\n", oasgate.Version())
			Writef(out, "  Commit:     %s\n", oasgate.Commit())
			Writef(out, "  Built:      %s\n", oasgate.BuildTime())
			Writef(out, "  Go version: %s\n", oasgate.GoVersion())
			Writef(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version number only")
	return cmd
}
