// Package commands provides the oasgate CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasgate/contract"
	"github.com/erraggy/oasgate/httpvalidator"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ExitError makes the process exit with Code once the command has finished
// reporting. It carries no message of its own.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", strings.TrimRight(string(bytes), "\n"))
	return nil
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// FormatContractPath returns a display-friendly path for the contract.
func FormatContractPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == StdinFilePath {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// validatorOptions are the contract flags shared by check, routes and proxy.
type validatorOptions struct {
	strict        bool
	redactHeaders bool
	exceptions    []string
}

// loadValidator parses the contract at path and compiles a validator for it.
func loadValidator(path string, stdin io.Reader, opts validatorOptions, logger *slog.Logger) (*httpvalidator.Validator, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, fmt.Errorf("reading contract: %w", err)
	}
	doc, err := contract.ParseWithOptions(
		contract.WithBytes(data),
		contract.WithSourceName(FormatContractPath(path)),
	)
	if err != nil {
		return nil, err
	}
	return httpvalidator.New(doc,
		httpvalidator.WithLogger(logger),
		httpvalidator.WithStrictContract(opts.strict),
		httpvalidator.WithRedactHeaders(opts.redactHeaders),
		httpvalidator.WithExceptions(opts.exceptions...),
	)
}
