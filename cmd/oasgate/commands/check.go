package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasgate/httpvalidator"
)

// checkFlags contains flags for the check command
type checkFlags struct {
	format string
	quiet  bool
	validatorOptions
}

// exchangeResult is the outcome of checking one recorded exchange.
type exchangeResult struct {
	Name     string                 `json:"name" yaml:"name"`
	Method   string                 `json:"method" yaml:"method"`
	URL      string                 `json:"url" yaml:"url"`
	Valid    bool                   `json:"valid" yaml:"valid"`
	Request  *httpvalidator.Verdict `json:"request" yaml:"request"`
	Response *httpvalidator.Verdict `json:"response,omitempty" yaml:"response,omitempty"`
}

// checkReport is the structured output of the check command.
type checkReport struct {
	Contract  string           `json:"contract" yaml:"contract"`
	Valid     bool             `json:"valid" yaml:"valid"`
	Total     int              `json:"total" yaml:"total"`
	Invalid   int              `json:"invalid" yaml:"invalid"`
	Exchanges []exchangeResult `json:"exchanges" yaml:"exchanges"`
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check [flags] <contract> <exchanges|->",
		Short: "Validate recorded request/response exchanges",
		Long: `Validate recorded HTTP exchanges against an OpenAPI 2.0 contract.

The exchanges file (YAML or JSON) lists requests and, optionally, the
responses they produced. Each request is checked against the contract, and
each response against the operation of its request. Use '-' to read the
exchanges from stdin.

Output Formats:
  text (default)  Human-readable text output
  json            JSON format for programmatic processing
  yaml            YAML format for programmatic processing

Exit Codes:
  0    Every exchange is valid
  1    At least one exchange violates the contract, or an error occurred`,
		Example: `  oasgate check swagger.yaml exchanges.yaml
  oasgate check --format json swagger.yaml exchanges.yaml | jq '.invalid'
  cat exchanges.yaml | oasgate check swagger.yaml -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateOutputFormat(flags.format); err != nil {
				return err
			}
			report, err := runCheck(cmd.InOrStdin(), args[0], args[1], flags, opts)
			if err != nil {
				return err
			}
			if err := writeCheckReport(cmd.OutOrStdout(), report, flags); err != nil {
				return err
			}
			if !report.Valid {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", FormatText, "output format: text, json, or yaml")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "text output lists invalid exchanges only")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "reject contracts with authoring errors")
	cmd.Flags().BoolVar(&flags.redactHeaders, "redact-headers", false, "omit header values from violations")
	cmd.Flags().StringArrayVar(&flags.exceptions, "exception", nil, "regexp of paths that pass without a matching route (repeatable)")
	return cmd
}

// runCheck validates every exchange in the exchanges file against the contract.
func runCheck(stdin io.Reader, contractPath, exchangesPath string, flags *checkFlags, opts *globalOptions) (*checkReport, error) {
	if contractPath == StdinFilePath && exchangesPath == StdinFilePath {
		return nil, fmt.Errorf("contract and exchanges cannot both be read from stdin")
	}

	v, err := loadValidator(contractPath, stdin, flags.validatorOptions, opts.logger)
	if err != nil {
		return nil, err
	}

	data, err := readInput(exchangesPath, stdin)
	if err != nil {
		return nil, fmt.Errorf("reading exchanges: %w", err)
	}
	exchanges, err := parseExchanges(data)
	if err != nil {
		return nil, err
	}

	report := &checkReport{
		Contract:  FormatContractPath(contractPath),
		Valid:     true,
		Total:     len(exchanges),
		Exchanges: make([]exchangeResult, 0, len(exchanges)),
	}
	for _, ex := range exchanges {
		result, err := checkExchange(v, ex)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ex.Name, err)
		}
		if !result.Valid {
			report.Valid = false
			report.Invalid++
		}
		report.Exchanges = append(report.Exchanges, result)
	}
	return report, nil
}

func checkExchange(v *httpvalidator.Validator, ex exchange) (exchangeResult, error) {
	result := exchangeResult{Name: ex.Name, Method: ex.Request.Method, URL: ex.Request.URL}

	req, err := ex.Request.snapshot()
	if err != nil {
		return result, err
	}
	result.Request, err = v.ValidateRequest(req)
	if err != nil {
		return result, err
	}
	result.Valid = result.Request.Valid

	if ex.Response == nil {
		return result, nil
	}
	resp, err := ex.Response.snapshot()
	if err != nil {
		return result, err
	}
	result.Response, err = v.ValidateResponse(req, resp)
	if err != nil {
		return result, err
	}
	result.Valid = result.Valid && result.Response.Valid
	return result, nil
}

func writeCheckReport(w io.Writer, report *checkReport, flags *checkFlags) error {
	if flags.format != FormatText {
		return OutputStructured(w, report, flags.format)
	}

	for _, ex := range report.Exchanges {
		if ex.Valid {
			if !flags.quiet {
				Writef(w, "✓ %s (%s %s)\n", ex.Name, ex.Method, ex.URL)
			}
			continue
		}
		Writef(w, "✗ %s (%s %s)\n", ex.Name, ex.Method, ex.URL)
		writeVerdictErrors(w, "request", ex.Request)
		writeVerdictErrors(w, "response", ex.Response)
	}

	Writef(w, "\n")
	if report.Valid {
		Writef(w, "✓ %d exchange(s) conform to %s\n", report.Total, report.Contract)
	} else {
		Writef(w, "✗ %d of %d exchange(s) violate %s\n", report.Invalid, report.Total, report.Contract)
	}
	return nil
}

func writeVerdictErrors(w io.Writer, label string, verdict *httpvalidator.Verdict) {
	if verdict == nil {
		return
	}
	for _, e := range verdict.Errors {
		Writef(w, "    %-8s %s\n", label, e.String())
	}
}
