package contract

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasgate/oaserrors"
)

// Option is a function that configures a parse operation
type Option func(*parseConfig) error

// parseConfig holds configuration for a parse operation
type parseConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte

	sourceName string
}

// WithFilePath specifies a file path as the input source
func WithFilePath(path string) Option {
	return func(cfg *parseConfig) error {
		if path == "" {
			return errors.New("file path cannot be empty")
		}
		cfg.filePath = &path
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *parseConfig) error {
		if r == nil {
			return errors.New("reader cannot be nil")
		}
		cfg.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the input source
func WithBytes(data []byte) Option {
	return func(cfg *parseConfig) error {
		if data == nil {
			return errors.New("bytes cannot be nil")
		}
		cfg.bytes = data
		return nil
	}
}

// WithSourceName sets the name used in parse errors for reader and byte input.
func WithSourceName(name string) Option {
	return func(cfg *parseConfig) error {
		cfg.sourceName = name
		return nil
	}
}

// ParseWithOptions parses an OpenAPI 2.0 contract using functional options.
//
// Example:
//
//	doc, err := contract.ParseWithOptions(contract.WithFilePath("swagger.yaml"))
func ParseWithOptions(opts ...Option) (*Document, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, &oaserrors.ConfigError{Option: "contract", Message: "invalid options", Cause: err}
		}
	}

	sources := 0
	if cfg.filePath != nil {
		sources++
	}
	if cfg.reader != nil {
		sources++
	}
	if cfg.bytes != nil {
		sources++
	}
	if sources != 1 {
		return nil, &oaserrors.ConfigError{
			Option:  "contract",
			Message: fmt.Sprintf("exactly one input source must be specified, got %d", sources),
		}
	}

	switch {
	case cfg.filePath != nil:
		data, err := os.ReadFile(*cfg.filePath)
		if err != nil {
			return nil, &oaserrors.ParseError{Path: *cfg.filePath, Message: "failed to read file", Cause: err}
		}
		return parseBytes(data, *cfg.filePath)
	case cfg.reader != nil:
		data, err := io.ReadAll(cfg.reader)
		if err != nil {
			return nil, &oaserrors.ParseError{Path: cfg.sourceName, Message: "failed to read input", Cause: err}
		}
		return parseBytes(data, cfg.sourceName)
	default:
		return parseBytes(cfg.bytes, cfg.sourceName)
	}
}

// Parse decodes a YAML or JSON contract held in memory.
func Parse(data []byte) (*Document, error) {
	return parseBytes(data, "")
}

// ParseFile reads and decodes the contract at path.
func ParseFile(path string) (*Document, error) {
	return ParseWithOptions(WithFilePath(path))
}

func parseBytes(data []byte, source string) (*Document, error) {
	// The node tree carries mapping order, which the generic map loses.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "failed to parse YAML/JSON", Cause: err}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "document is not an object", Cause: err}
	}
	if raw == nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "document is empty"}
	}
	raw, _ = normalizeValue(raw).(map[string]any)

	if v, ok := raw["swagger"]; ok {
		// An unquoted 2.0 in YAML decodes as a number.
		if f, isFloat := v.(float64); isFloat && f == 2 {
			v = "2.0"
			raw["swagger"] = v
		}
		if s := fmt.Sprint(v); s != "2.0" {
			return nil, &oaserrors.ParseError{
				Path:    source,
				Message: fmt.Sprintf("unsupported swagger version %q (only 2.0 is supported)", s),
			}
		}
	}

	doc := &Document{}
	doc.decodeFromMap(raw)
	doc.PathOrder = pathOrder(&root, doc.Paths)
	return doc, nil
}

// pathOrder returns the keys of the "paths" mapping in declaration order.
// Keys missing from the node tree are appended so every template is listed once.
func pathOrder(root *yaml.Node, paths map[string]*PathItem) []string {
	order := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))

	if node := mappingValue(documentMapping(root), "paths"); node != nil {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if _, ok := paths[key]; ok && !seen[key] {
				order = append(order, key)
				seen[key] = true
			}
		}
	}
	for key := range paths {
		if !seen[key] {
			order = append(order, key)
		}
	}
	return order
}

func documentMapping(root *yaml.Node) *yaml.Node {
	if root == nil {
		return nil
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil
	}
	return root
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			v := m.Content[i+1]
			if v.Kind == yaml.MappingNode {
				return v
			}
			return nil
		}
	}
	return nil
}
