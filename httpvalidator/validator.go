package httpvalidator

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/erraggy/oasgate/contract"
	"github.com/erraggy/oasgate/internal/httputil"
	"github.com/erraggy/oasgate/oaserrors"
)

// Validator validates HTTP requests and responses against an OpenAPI 2.0 contract.
//
// Create a Validator using the New function:
//
//	doc, _ := contract.ParseFile("swagger.yaml")
//	v, err := httpvalidator.New(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	verdict, err := v.ValidateRequest(req)
//	if !verdict.Valid {
//	    // Handle validation errors
//	}
//
// A Validator is immutable after New and safe for concurrent use.
type Validator struct {
	doc *contract.Document

	// pathMatcherSet handles path template matching
	pathMatcherSet *PathMatcherSet

	// schemaValidator handles JSON Schema validation of values
	schemaValidator *SchemaValidator

	exceptions    []*regexp.Regexp
	redactHeaders bool
	logger        *slog.Logger
}

// RouteMatch is the result of resolving a request path and method against the contract.
type RouteMatch struct {
	// Template is the matched path template; empty when no template matched.
	Template string
	// Found is true when a template matched the path.
	Found bool
	// PathItem is the path item of the matched template.
	PathItem *contract.PathItem
	// Operation is nil when the template does not declare the method.
	Operation *contract.Operation
	// Params holds the placeholder values taken from the path.
	Params map[string]string
}

// Route describes a single contract operation.
type Route struct {
	Method      string `json:"method" yaml:"method"`
	Path        string `json:"path" yaml:"path"`
	OperationID string `json:"operationId,omitempty" yaml:"operationId,omitempty"`
}

// New creates a Validator for doc. Path templates and exception patterns are
// compiled, and every schema reachable from the contract is compiled once.
//
// Returns an *oaserrors.ConfigError if doc is nil, an option is invalid, or a
// path template is malformed.
func New(doc *contract.Document, opts ...Option) (*Validator, error) {
	if doc == nil {
		return nil, &oaserrors.ConfigError{Option: "contract", Message: "contract document cannot be nil"}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, &oaserrors.ConfigError{Option: "httpvalidator", Message: "invalid option", Cause: err}
		}
	}

	v := &Validator{
		doc:             doc,
		schemaValidator: NewSchemaValidator(doc),
		redactHeaders:   cfg.redactHeaders,
		logger:          cfg.logger,
	}

	for _, pattern := range cfg.exceptions {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &oaserrors.ConfigError{Option: "exceptions", Value: pattern, Message: "invalid pattern", Cause: err}
		}
		v.exceptions = append(v.exceptions, re)
	}

	matcherSet, err := NewPathMatcherSet(templatesOf(doc), doc.BasePath)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "paths", Message: "invalid path template", Cause: err}
	}
	v.pathMatcherSet = matcherSet

	if err := v.checkContract(cfg.strictContract); err != nil {
		return nil, err
	}

	v.schemaValidator.Precompile(v.contractSchemas())
	return v, nil
}

// templatesOf returns the path templates of doc in declaration order. Documents
// built without the parser have no order; their templates are sorted.
func templatesOf(doc *contract.Document) []string {
	if len(doc.PathOrder) == len(doc.Paths) {
		return doc.PathOrder
	}
	templates := make([]string, 0, len(doc.Paths))
	for t := range doc.Paths {
		templates = append(templates, t)
	}
	sort.Strings(templates)
	return templates
}

// checkContract reports authoring errors that affect validation. In strict mode
// the first one is returned; otherwise each is logged as a warning.
func (v *Validator) checkContract(strict bool) error {
	for _, route := range v.Routes() {
		item := v.doc.Paths[route.Path]
		op := item.Operation(route.Method)
		where := route.Method + " " + route.Path

		params, dangling := v.doc.OperationParameters(item, op)
		for _, ref := range dangling {
			if strict {
				return &oaserrors.ReferenceError{Ref: ref, Location: where, Message: "parameter is not defined"}
			}
			v.logger.Warn("contract parameter reference does not resolve; parameter ignored",
				"route", where, "ref", ref)
		}

		for _, p := range params {
			if p.Required && p.HasDefault() {
				if strict {
					return &oaserrors.ConfigError{
						Option:  "contract",
						Value:   p.Name,
						Message: fmt.Sprintf("parameter of %s is both required and has a default", where),
					}
				}
				v.logger.Warn("contract parameter is required and has a default; default ignored",
					"route", where, "parameter", p.Name, "in", p.In)
			}
		}

		for code := range op.Responses {
			if !httputil.ValidateStatusCode(code) {
				if strict {
					return &oaserrors.ConfigError{
						Option:  "contract",
						Value:   code,
						Message: fmt.Sprintf("invalid responses key in %s", where),
					}
				}
				v.logger.Warn("contract responses key is not a status code", "route", where, "key", code)
			}
		}
	}
	return nil
}

// contractSchemas returns every schema the engine may evaluate.
func (v *Validator) contractSchemas() []*contract.Schema {
	var schemas []*contract.Schema
	addParam := func(p *contract.Parameter) {
		if p != nil && !p.IsRef() {
			schemas = append(schemas, p.ValueSchema())
		}
	}
	addResponse := func(r *contract.Response) {
		if r == nil || r.IsRef() {
			return
		}
		schemas = append(schemas, r.Schema)
		for _, h := range sortedKeys(r.Headers) {
			schemas = append(schemas, r.Headers[h])
		}
	}

	for _, name := range sortedKeys(v.doc.Parameters) {
		addParam(v.doc.Parameters[name])
	}
	for _, name := range sortedKeys(v.doc.Responses) {
		addResponse(v.doc.Responses[name])
	}
	for _, tmpl := range templatesOf(v.doc) {
		item := v.doc.Paths[tmpl]
		if item == nil {
			continue
		}
		for _, p := range item.Parameters {
			addParam(p)
		}
		for _, method := range httputil.Methods {
			op := item.Operations[method]
			if op == nil {
				continue
			}
			for _, p := range op.Parameters {
				addParam(p)
			}
			for _, code := range sortedKeys(op.Responses) {
				addResponse(op.Responses[code])
			}
		}
	}
	return schemas
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match resolves a request path (with optional query string) and method
// against the contract. Found reports whether a template matched; Operation is
// nil when the matched template does not declare the method.
func (v *Validator) Match(path, method string) RouteMatch {
	template, params, found := v.pathMatcherSet.Match(path)
	if !found {
		return RouteMatch{}
	}
	item := v.doc.Paths[template]
	return RouteMatch{
		Template:  template,
		Found:     true,
		PathItem:  item,
		Operation: item.Operation(method),
		Params:    params,
	}
}

// isException reports whether the normalized route matches an exception pattern.
func (v *Validator) isException(route string) bool {
	for _, re := range v.exceptions {
		if re.MatchString(route) {
			return true
		}
	}
	return false
}

// Routes lists the contract operations in declaration order, methods in
// canonical order within a path.
func (v *Validator) Routes() []Route {
	var routes []Route
	for _, tmpl := range v.pathMatcherSet.Templates() {
		item := v.doc.Paths[tmpl]
		if item == nil {
			continue
		}
		for _, method := range httputil.Methods {
			if op := item.Operations[method]; op != nil {
				routes = append(routes, Route{
					Method:      strings.ToUpper(method),
					Path:        tmpl,
					OperationID: op.OperationID,
				})
			}
		}
	}
	return routes
}

// Document returns the contract the validator was built from.
func (v *Validator) Document() *contract.Document {
	return v.doc
}
