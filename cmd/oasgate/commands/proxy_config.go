package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/erraggy/oasgate/middleware"
)

// ProxyConfig configures the proxy command. Values come from, in increasing
// precedence: defaults, the config file, OASGATE_* environment variables and
// command-line flags.
type ProxyConfig struct {
	Listen            string        `mapstructure:"listen" validate:"required,hostname_port"`
	Upstream          string        `mapstructure:"upstream" validate:"required,url"`
	Contract          string        `mapstructure:"contract" validate:"required"`
	ValidateResponses bool          `mapstructure:"validate_responses"`
	StrictContract    bool          `mapstructure:"strict_contract"`
	RedactHeaders     bool          `mapstructure:"redact_headers"`
	Exceptions        []string      `mapstructure:"exceptions" validate:"dive,required,regexp"`
	MetricsPath       string        `mapstructure:"metrics_path" validate:"omitempty,startswith=/"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// proxyFlagKeys maps proxy flags to their config keys.
var proxyFlagKeys = map[string]string{
	"listen":              "listen",
	"upstream":            "upstream",
	"contract":            "contract",
	"validate-responses":  "validate_responses",
	"strict":              "strict_contract",
	"redact-headers":      "redact_headers",
	"exception":           "exceptions",
	"metrics-path":        "metrics_path",
	"max-body-bytes":      "max_body_bytes",
	"read-header-timeout": "read_header_timeout",
	"shutdown-timeout":    "shutdown_timeout",
}

// newProxyViper creates the viper instance for the proxy configuration.
// If configFile is empty, oasgate.yaml/.yml is searched for in the current
// directory and in $HOME/.oasgate.
func newProxyViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		v.SetConfigFile(found)
	} else {
		// No search paths: ReadInConfig reports ConfigFileNotFoundError.
		v.SetConfigName("oasgate")
		v.SetConfigType("yaml")
	}

	// OASGATE_UPSTREAM, OASGATE_VALIDATE_RESPONSES, ...
	v.SetEnvPrefix("OASGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", ":8080")
	v.SetDefault("upstream", "")
	v.SetDefault("contract", "")
	v.SetDefault("validate_responses", false)
	v.SetDefault("strict_contract", false)
	v.SetDefault("redact_headers", false)
	v.SetDefault("exceptions", []string{})
	v.SetDefault("metrics_path", "/metrics")
	v.SetDefault("max_body_bytes", middleware.DefaultMaxBodyBytes)
	v.SetDefault("read_header_timeout", 10*time.Second)
	v.SetDefault("shutdown_timeout", 15*time.Second)
	return v
}

func findConfigFile() string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".oasgate"))
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths returns the first oasgate.yaml or oasgate.yml found in paths.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "oasgate"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindProxyFlags binds the proxy flags present in fs to their config keys.
func bindProxyFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range proxyFlagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// loadProxyConfig reads the config file, applies environment and flag
// overrides, and validates the result.
func loadProxyConfig(v *viper.Viper) (*ProxyConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg ProxyConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *ProxyConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("regexp", validateRegexp); err != nil {
		return fmt.Errorf("failed to register regexp validator: %w", err)
	}
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func validateRegexp(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleValidationError(e))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "regexp":
		return fmt.Sprintf("%s must be a valid regular expression", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
