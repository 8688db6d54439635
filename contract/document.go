package contract

import "strings"

// Parameter locations recognized by the contract model.
const (
	LocationPath   = "path"
	LocationQuery  = "query"
	LocationHeader = "header"
	LocationBody   = "body"
	LocationForm   = "formData"
)

// Collection formats for array parameters and headers.
const (
	CollectionCSV   = "csv"
	CollectionSSV   = "ssv"
	CollectionTSV   = "tsv"
	CollectionPipes = "pipes"
	CollectionMulti = "multi"
)

// DefaultResponseKey is the responses map key used when no status code matches.
const DefaultResponseKey = "default"

// Document is an OpenAPI 2.0 (Swagger) contract reduced to the sections needed
// for runtime traffic validation.
// Reference: https://spec.openapis.org/oas/v2.0.html
//
// A Document is immutable once returned by Parse; validators share it by pointer.
type Document struct {
	Swagger  string
	Title    string
	Version  string
	BasePath string

	// Paths maps a path template (e.g. "/pets/{id}") to its operations.
	Paths map[string]*PathItem
	// PathOrder lists the keys of Paths in declaration order.
	PathOrder []string

	// Parameters holds reusable parameters addressed by "#/parameters/<name>".
	Parameters map[string]*Parameter
	// Responses holds reusable responses addressed by "#/responses/<name>".
	Responses map[string]*Response
	// Definitions holds reusable schemas addressed by "#/definitions/<name>".
	Definitions map[string]*Schema

	// Raw is the decoded document as produced by the YAML/JSON decoder.
	Raw map[string]any
}

// PathItem describes the operations available on a single path template.
type PathItem struct {
	// Parameters apply to every operation under this path.
	Parameters []*Parameter
	// Operations are keyed by lower-case HTTP method.
	Operations map[string]*Operation
}

// Operation returns the operation declared for method, matching case-insensitively.
func (p *PathItem) Operation(method string) *Operation {
	if p == nil || p.Operations == nil {
		return nil
	}
	return p.Operations[strings.ToLower(method)]
}

// Operation describes a single API operation on a path.
type Operation struct {
	OperationID string
	Summary     string
	// Parameters are in declaration order and may contain $ref entries.
	Parameters []*Parameter
	// Responses are keyed by status code ("200") or "default" and may contain $ref entries.
	Responses map[string]*Response
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Ref         string
	Name        string
	In          string
	Description string
	Required    bool

	// Schema is the payload schema of a body parameter.
	Schema *Schema
	// Inline is the schema described by the parameter object itself
	// (type, format, items, collectionFormat, default, enum, bounds...).
	Inline *Schema
}

// IsRef reports whether the parameter is a reference to a shared definition.
func (p *Parameter) IsRef() bool {
	return p != nil && p.Ref != ""
}

// ValueSchema returns the schema values of this parameter are validated against:
// the body schema for body parameters, the inline schema otherwise.
func (p *Parameter) ValueSchema() *Schema {
	if p.Schema != nil {
		return p.Schema
	}
	return p.Inline
}

// Default returns the declared default value, or nil.
func (p *Parameter) Default() any {
	if p.Inline == nil {
		return nil
	}
	return p.Inline.Default
}

// HasDefault reports whether the parameter declares a default value.
func (p *Parameter) HasDefault() bool {
	if p.Inline == nil || p.Inline.Raw == nil {
		return false
	}
	_, ok := p.Inline.Raw["default"]
	return ok
}

// Response describes a single response from an API operation.
type Response struct {
	Ref         string
	Description string
	// Headers maps a header name to its schema.
	Headers map[string]*Schema
	// Schema is the body schema; nil means the response carries no body.
	Schema *Schema
}

// IsRef reports whether the response is a reference to a shared definition.
func (r *Response) IsRef() bool {
	return r != nil && r.Ref != ""
}

// Schema is a JSON-Schema subtree. The typed fields are the ones the engine
// needs for coercion; Raw is the complete object handed to the schema evaluator.
type Schema struct {
	Ref              string
	Type             string
	Format           string
	CollectionFormat string
	Default          any
	Items            *Schema
	Properties       map[string]*Schema

	Raw map[string]any
}
