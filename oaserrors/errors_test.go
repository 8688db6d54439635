package oaserrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := &ParseError{
			Path:    "/path/to/api.yaml",
			Line:    42,
			Message: "invalid syntax",
			Cause:   cause,
		}

		msg := err.Error()
		if msg != "parse error in /path/to/api.yaml at line 42: invalid syntax: underlying error" {
			t.Errorf("unexpected error message: %s", msg)
		}
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		err := &ParseError{}
		if err.Error() != "parse error" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &ParseError{Cause: cause}
		//nolint:errorlint // testing pointer identity
		if unwrapped := err.Unwrap(); unwrapped != cause {
			t.Error("Unwrap should return cause")
		}
	})

	t.Run("Is matches ErrParse only", func(t *testing.T) {
		err := &ParseError{Message: "test"}
		if !errors.Is(err, ErrParse) {
			t.Error("ParseError should match ErrParse")
		}
		if errors.Is(err, ErrSchema) {
			t.Error("ParseError should not match ErrSchema")
		}
	})

	t.Run("As extracts ParseError", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &ParseError{Path: "api.yaml", Line: 5})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatal("errors.As should succeed")
		}
		if parseErr.Line != 5 {
			t.Errorf("unexpected line: %d", parseErr.Line)
		}
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ReferenceError{
			Ref:      "#/parameters/missing",
			Location: "GET /pets parameters[1]",
			Message:  "not defined",
		}
		want := "reference error: #/parameters/missing at GET /pets parameters[1]: not defined"
		if err.Error() != want {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrReference", func(t *testing.T) {
		err := &ReferenceError{Ref: "#/responses/x"}
		if !errors.Is(err, ErrReference) {
			t.Error("ReferenceError should match ErrReference")
		}
		if errors.Is(err, ErrConfig) {
			t.Error("ReferenceError should not match ErrConfig")
		}
	})
}

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &SchemaError{
			Location: "query parameter limit",
			Message:  "compile failed",
			Cause:    errors.New("bad type"),
		}
		want := "schema error for query parameter limit: compile failed: bad type"
		if err.Error() != want {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrSchema through wrapping", func(t *testing.T) {
		err := fmt.Errorf("validate: %w", &SchemaError{Location: "body"})
		if !errors.Is(err, ErrSchema) {
			t.Error("wrapped SchemaError should match ErrSchema")
		}
	})

	t.Run("root cause is reachable", func(t *testing.T) {
		root := errors.New("dangling ref")
		err := &SchemaError{Cause: root}
		if !errors.Is(err, root) {
			t.Error("should find root cause through Unwrap chain")
		}
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ConfigError{
			Option:  "exceptions",
			Value:   "([",
			Message: "invalid pattern",
		}
		want := "configuration error for exceptions (value: ([): invalid pattern"
		if err.Error() != want {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrConfig", func(t *testing.T) {
		err := &ConfigError{Message: "contract is nil"}
		if !errors.Is(err, ErrConfig) {
			t.Error("ConfigError should match ErrConfig")
		}
	})
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{ErrParse, ErrReference, ErrSchema, ErrConfig}

	for i, s1 := range sentinels {
		for j, s2 := range sentinels {
			if i != j && errors.Is(s1, s2) {
				t.Errorf("sentinel errors should be distinct: %v should not match %v", s1, s2)
			}
		}
	}
}
