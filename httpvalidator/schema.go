package httpvalidator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/erraggy/oasgate/contract"
	"github.com/erraggy/oasgate/oaserrors"
)

// schemaBaseURL is the namespace synthetic schema resources are registered under.
const schemaBaseURL = "https://oasgate.local/schemas/"

// messagePrinter renders evaluator messages.
var messagePrinter = message.NewPrinter(language.English)

// SchemaValidator validates values against contract schemas using a JSON-Schema
// Draft 4 evaluator with format assertion enabled.
//
// Every schema fragment is registered as its own resource carrying the
// contract's definitions section, so "#/definitions/..." references inside the
// fragment resolve. Fragments reachable from the contract are compiled once by
// Precompile; any other fragment is compiled on demand and not retained.
//
// A SchemaValidator is safe for concurrent use once precompilation is done.
type SchemaValidator struct {
	// definitions is the contract's definitions section in JSON form.
	definitions any

	// compiled maps a schema fragment to its compiled form (or compile error).
	compiled map[*contract.Schema]*compiledSchema

	// seq numbers on-demand resources.
	seq atomic.Int64
}

type compiledSchema struct {
	schema *jsonschema.Schema
	err    error
}

// NewSchemaValidator creates a SchemaValidator for schemas of doc.
// doc may be nil, in which case schemas cannot reference definitions.
func NewSchemaValidator(doc *contract.Document) *SchemaValidator {
	sv := &SchemaValidator{compiled: make(map[*contract.Schema]*compiledSchema)}
	if doc != nil && doc.Raw != nil {
		if defs, ok := doc.Raw["definitions"]; ok {
			sv.definitions = defs
		}
	}
	return sv
}

// Precompile compiles schemas ahead of validation. Compile failures are kept
// and reported by Validate for the affected schema. Precompile must not be
// called concurrently with Validate.
func (sv *SchemaValidator) Precompile(schemas []*contract.Schema) {
	c := newCompiler()
	pending := make(map[*contract.Schema]string, len(schemas))
	for i, s := range schemas {
		if s == nil || skipsValidation(s) {
			continue
		}
		if _, done := sv.compiled[s]; done {
			continue
		}
		if _, queued := pending[s]; queued {
			continue
		}
		loc := schemaBaseURL + "contract/" + strconv.Itoa(i) + ".json"
		if err := sv.addResource(c, loc, s); err != nil {
			sv.compiled[s] = &compiledSchema{err: err}
			continue
		}
		pending[s] = loc
	}
	for s, loc := range pending {
		compiled, err := c.Compile(loc)
		sv.compiled[s] = &compiledSchema{schema: compiled, err: err}
	}
}

// Validate evaluates value against s and returns the violations found.
// A nil value is validated as JSON null. The error result is reserved for
// evaluator failures (malformed schema, unresolvable reference) and is always
// an *oaserrors.SchemaError.
func (sv *SchemaValidator) Validate(value any, s *contract.Schema) ([]Violation, error) {
	if s == nil || skipsValidation(s) {
		return nil, nil
	}

	compiled, err := sv.lookup(s)
	if err != nil {
		return nil, &oaserrors.SchemaError{Message: "failed to compile schema", Cause: err}
	}

	instance, err := toJSONValue(value)
	if err != nil {
		return nil, &oaserrors.SchemaError{Message: "value cannot be represented as JSON", Cause: err}
	}

	err = compiled.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, &oaserrors.SchemaError{Message: "evaluator failed", Cause: err}
	}

	var violations []Violation
	collectViolations(verr, instance, &violations)
	return violations, nil
}

func (sv *SchemaValidator) lookup(s *contract.Schema) (*jsonschema.Schema, error) {
	if c, ok := sv.compiled[s]; ok {
		return c.schema, c.err
	}
	c := newCompiler()
	loc := schemaBaseURL + "adhoc/" + strconv.FormatInt(sv.seq.Add(1), 10) + ".json"
	if err := sv.addResource(c, loc, s); err != nil {
		return nil, err
	}
	return c.Compile(loc)
}

// addResource registers s, merged with the contract definitions, under loc.
func (sv *SchemaValidator) addResource(c *jsonschema.Compiler, loc string, s *contract.Schema) error {
	fragment := make(map[string]any, len(s.Raw)+1)
	for k, v := range s.Raw {
		fragment[k] = v
	}
	if s.Raw == nil && s.Ref != "" {
		fragment["$ref"] = s.Ref
	}
	if sv.definitions != nil {
		fragment["definitions"] = sv.definitions
	}

	doc, err := toJSONValue(fragment)
	if err != nil {
		return fmt.Errorf("schema is not representable as JSON: %w", err)
	}
	return c.AddResource(loc, doc)
}

// skipsValidation reports schemas the evaluator cannot express, such as the
// Swagger "file" type of form uploads.
func skipsValidation(s *contract.Schema) bool {
	return s.Type == "file"
}

func newCompiler() *jsonschema.Compiler {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft4)
	c.AssertFormat()
	for _, f := range openAPIFormats {
		c.RegisterFormat(f)
	}
	return c
}

// openAPIFormats are the OpenAPI 2.0 data type formats not known to JSON Schema.
var openAPIFormats = []*jsonschema.Format{
	{Name: "int32", Validate: intRange(math.MinInt32, math.MaxInt32)},
	{Name: "int64", Validate: intRange(math.MinInt64, math.MaxInt64)},
	{Name: "float", Validate: anyValue},
	{Name: "double", Validate: anyValue},
	{Name: "byte", Validate: anyValue},
	{Name: "binary", Validate: anyValue},
	{Name: "password", Validate: anyValue},
}

func anyValue(any) error { return nil }

func intRange(lo, hi float64) func(any) error {
	return func(v any) error {
		n, ok := toFloat(v)
		if !ok {
			// formats only constrain values of their own type
			return nil
		}
		if _, isString := v.(string); isString {
			return nil
		}
		if n < lo || n > hi {
			return fmt.Errorf("%v is out of range [%.0f, %.0f]", v, lo, hi)
		}
		return nil
	}
}

// toJSONValue converts v into the value model the evaluator expects by a JSON
// round trip: objects become map[string]any and numbers json.Number.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// collectViolations flattens the evaluator's error tree into its leaves.
func collectViolations(verr *jsonschema.ValidationError, instance any, out *[]Violation) {
	if verr == nil {
		return
	}
	if len(verr.Causes) == 0 {
		*out = append(*out, Violation{
			Property: propertyPath(verr.InstanceLocation),
			Keyword:  keyword(verr),
			Instance: plainValue(valueAt(instance, verr.InstanceLocation)),
			Message:  verr.ErrorKind.LocalizedString(messagePrinter),
		})
		return
	}
	for _, cause := range verr.Causes {
		collectViolations(cause, instance, out)
	}
}

// propertyPath renders an instance location rooted at "instance".
func propertyPath(loc []string) string {
	if len(loc) == 0 {
		return "instance"
	}
	return "instance." + strings.Join(loc, ".")
}

func keyword(verr *jsonschema.ValidationError) string {
	path := verr.ErrorKind.KeywordPath()
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

// valueAt walks an instance along a location.
func valueAt(instance any, loc []string) any {
	cur := instance
	for _, tok := range loc {
		switch t := cur.(type) {
		case map[string]any:
			cur = t[tok]
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(t) {
				return nil
			}
			cur = t[i]
		default:
			return nil
		}
	}
	return cur
}

// plainValue converts json.Number leaves back to int64 or float64.
func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plainValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plainValue(val)
		}
		return out
	default:
		return v
	}
}
