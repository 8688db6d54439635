package commands

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, stdin io.Reader, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	root.SetIn(stdin)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"check", "routes", "proxy", "mcp", "version"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
			assert.NotEmpty(t, cmd.Short)
		})
	}
}

func TestRootCmd_LogFlags(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		_, _, err := execute(t, nil, "--log-level", "loud", "version")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, _, err := execute(t, nil, "--log-format", "xml", "version")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})

	t.Run("unknown command", func(t *testing.T) {
		_, _, err := execute(t, nil, "validate")
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
		enabled slog.Level
	}{
		{"text warn", "warn", "text", false, slog.LevelWarn},
		{"json debug", "debug", "json", false, slog.LevelDebug},
		{"upper case", "INFO", "JSON", false, slog.LevelInfo},
		{"bad level", "verbose", "text", true, 0},
		{"bad format", "info", "logfmt", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := newLogger(&buf, tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Enabled(t.Context(), tt.enabled))
			assert.False(t, logger.Enabled(t.Context(), tt.enabled-1))
		})
	}

	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, "info", "json")
		require.NoError(t, err)
		logger.Info("hello", "route", "/pets")
		assert.Contains(t, buf.String(), `"msg":"hello"`)
		assert.Contains(t, buf.String(), `"route":"/pets"`)
	})
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{FormatText, FormatJSON, FormatYAML} {
		assert.NoError(t, ValidateOutputFormat(f))
	}
	assert.Error(t, ValidateOutputFormat("xml"))
}

func TestOutputStructured(t *testing.T) {
	data := map[string]any{"valid": true}

	var buf bytes.Buffer
	require.NoError(t, OutputStructured(&buf, data, FormatJSON))
	assert.JSONEq(t, `{"valid":true}`, buf.String())

	buf.Reset()
	require.NoError(t, OutputStructured(&buf, data, FormatYAML))
	assert.Equal(t, "valid: true\n", buf.String())

	assert.Error(t, OutputStructured(&buf, data, FormatText))
}

func TestExitError(t *testing.T) {
	assert.Equal(t, "exit status 2", (&ExitError{Code: 2}).Error())
}
