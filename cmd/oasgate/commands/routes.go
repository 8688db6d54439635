package commands

import (
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasgate/httpvalidator"
)

// routesReport is the structured output of the routes command.
type routesReport struct {
	Title    string                `json:"title,omitempty" yaml:"title,omitempty"`
	Version  string                `json:"version,omitempty" yaml:"version,omitempty"`
	BasePath string                `json:"basePath,omitempty" yaml:"basePath,omitempty"`
	Routes   []httpvalidator.Route `json:"routes" yaml:"routes"`
}

func newRoutesCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "routes [flags] <contract|->",
		Short: "List the operations a contract declares",
		Long: `List every operation of an OpenAPI 2.0 contract in declaration order.

Path templates are tried in this order when a request is matched, so the
first template listed wins when several match the same path.`,
		Example: `  oasgate routes swagger.yaml
  oasgate routes --format json swagger.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateOutputFormat(format); err != nil {
				return err
			}
			v, err := loadValidator(args[0], cmd.InOrStdin(), validatorOptions{}, opts.logger)
			if err != nil {
				return err
			}
			doc := v.Document()
			report := routesReport{
				Title:    doc.Title,
				Version:  doc.Version,
				BasePath: doc.BasePath,
				Routes:   v.Routes(),
			}
			if report.Routes == nil {
				report.Routes = []httpvalidator.Route{}
			}
			if format != FormatText {
				return OutputStructured(cmd.OutOrStdout(), report, format)
			}
			return writeRoutesTable(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&format, "format", FormatText, "output format: text, json, or yaml")
	return cmd
}

func writeRoutesTable(w io.Writer, report routesReport) error {
	if report.BasePath != "" {
		Writef(w, "Base path: %s\n\n", report.BasePath)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	Writef(tw, "METHOD\tPATH\tOPERATION\n")
	for _, r := range report.Routes {
		Writef(tw, "%s\t%s\t%s\n", r.Method, r.Path, r.OperationID)
	}
	return tw.Flush()
}
