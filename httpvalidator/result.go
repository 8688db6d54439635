package httpvalidator

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasgate/contract"
)

// Kind identifies the variant of a ValidationError.
type Kind int

// Validation error kinds. The zero value is not a valid kind.
const (
	KindRouteNotFound Kind = iota + 1
	KindParameterNotFound
	KindParameterInvalid
	KindHeaderMissing
	KindHeaderInvalid
	KindBodyInvalid
	KindBodyMissing
	KindBodyUnexpected
	KindStatusUndefined
)

var kindNames = map[Kind]string{
	KindRouteNotFound:     "RouteNotFound",
	KindParameterNotFound: "ParameterNotFound",
	KindParameterInvalid:  "ParameterInvalid",
	KindHeaderMissing:     "HeaderMissing",
	KindHeaderInvalid:     "HeaderInvalid",
	KindBodyInvalid:       "BodyInvalid",
	KindBodyMissing:       "BodyMissing",
	KindBodyUnexpected:    "BodyUnexpected",
	KindStatusUndefined:   "StatusUndefined",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names decode to the zero Kind.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	*k = 0
	return nil
}

// IsResponse reports whether the kind is produced by response validation.
func (k Kind) IsResponse() bool {
	switch k {
	case KindHeaderMissing, KindHeaderInvalid, KindBodyInvalid, KindBodyMissing,
		KindBodyUnexpected, KindStatusUndefined:
		return true
	}
	return false
}

// Violation is a single schema violation reported by the schema evaluator.
type Violation struct {
	// Property is the instance path, rooted at "instance" (e.g. "instance.pets.0.id").
	Property string `json:"property" yaml:"property"`
	// Keyword is the failing schema keyword (e.g. "type", "required").
	Keyword string `json:"keyword" yaml:"keyword"`
	// Instance is the offending value.
	Instance any `json:"instance,omitempty" yaml:"instance,omitempty"`
	// Message is the evaluator's human-readable description.
	Message string `json:"message" yaml:"message"`
}

// ValidationError is a single contract violation found in a request or response.
// Kind selects which of the remaining fields are meaningful.
type ValidationError struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Name is the parameter or header name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Location is the parameter location (ParameterNotFound).
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	// Route is the normalized request path (RouteNotFound).
	Route string `json:"route,omitempty" yaml:"route,omitempty"`
	// StatusCode is the response status (StatusUndefined).
	StatusCode int `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	// Violations are the schema violations (ParameterInvalid, HeaderInvalid, BodyInvalid).
	Violations []Violation `json:"violations,omitempty" yaml:"violations,omitempty"`

	// Path locates the error in the message, e.g. "query.limit" or "response.header.x-rate".
	Path string `json:"path" yaml:"path"`
	// Message is a human-readable summary.
	Message string `json:"message" yaml:"message"`
}

// String returns "path: message".
func (e ValidationError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Verdict is the outcome of validating one request or one response.
// A Verdict is created per call and never shared.
type Verdict struct {
	// Valid is true if and only if Errors is empty.
	Valid bool `json:"valid" yaml:"valid"`

	// Errors lists every violation found, in the order checks ran.
	Errors []ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Values holds the coerced parameter values keyed by parameter name.
	// A parameter that failed validation is recorded in its pre-cast form.
	Values map[string]any `json:"values,omitempty" yaml:"values,omitempty"`

	// MatchedPath is the contract path template that matched the request
	// (e.g., "/pets/{petId}"). Empty if no path matched.
	MatchedPath string `json:"matchedPath,omitempty" yaml:"matchedPath,omitempty"`

	// MatchedMethod is the HTTP method of the request (e.g., "GET", "POST").
	MatchedMethod string `json:"matchedMethod,omitempty" yaml:"matchedMethod,omitempty"`

	// StatusCode is the response status code (response verdicts only).
	StatusCode int `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
}

// newVerdict creates a valid, empty verdict.
func newVerdict() *Verdict {
	return &Verdict{
		Valid:  true,
		Values: make(map[string]any),
	}
}

// addError appends an error and marks the verdict invalid.
func (v *Verdict) addError(e ValidationError) {
	v.Valid = false
	v.Errors = append(v.Errors, e)
}

// ErrorsOfKind returns the errors of the given kind, in order.
func (v *Verdict) ErrorsOfKind(kind Kind) []ValidationError {
	var out []ValidationError
	for _, e := range v.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func routeNotFound(method, route string) ValidationError {
	return ValidationError{
		Kind:    KindRouteNotFound,
		Route:   route,
		Path:    "path",
		Message: fmt.Sprintf("route '%s %s' is not defined", strings.ToUpper(method), route),
	}
}

func parameterNotFound(p *contract.Parameter) ValidationError {
	return ValidationError{
		Kind:     KindParameterNotFound,
		Name:     p.Name,
		Location: p.In,
		Path:     p.In + "." + p.Name,
		Message:  fmt.Sprintf("required parameter %q could not be found in %s", p.Name, p.In),
	}
}

func parameterInvalid(p *contract.Parameter, violations []Violation) ValidationError {
	return ValidationError{
		Kind:       KindParameterInvalid,
		Name:       p.Name,
		Location:   p.In,
		Violations: violations,
		Path:       p.In + "." + p.Name,
		Message:    summarize(violations),
	}
}

func headerMissing(name string) ValidationError {
	return ValidationError{
		Kind:    KindHeaderMissing,
		Name:    name,
		Path:    "response.header." + name,
		Message: fmt.Sprintf("required response header %q is missing", name),
	}
}

func headerInvalid(name string, violations []Violation) ValidationError {
	return ValidationError{
		Kind:       KindHeaderInvalid,
		Name:       name,
		Violations: violations,
		Path:       "response.header." + name,
		Message:    summarize(violations),
	}
}

func bodyInvalid(violations []Violation) ValidationError {
	return ValidationError{
		Kind:       KindBodyInvalid,
		Violations: violations,
		Path:       "response.body",
		Message:    summarize(violations),
	}
}

func bodyMissing() ValidationError {
	return ValidationError{
		Kind:    KindBodyMissing,
		Path:    "response.body",
		Message: "response body is required by the contract but none was sent",
	}
}

func bodyUnexpected() ValidationError {
	return ValidationError{
		Kind:    KindBodyUnexpected,
		Path:    "response.body",
		Message: "response body was sent but the contract declares none",
	}
}

func statusUndefined(code int) ValidationError {
	return ValidationError{
		Kind:       KindStatusUndefined,
		StatusCode: code,
		Path:       "response.status",
		Message:    fmt.Sprintf("no response is defined for status code %d and no default response is defined", code),
	}
}

// summarize joins violation messages into one line.
func summarize(violations []Violation) string {
	if len(violations) == 0 {
		return "value does not match its schema"
	}
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.Property + ": " + v.Message
	}
	return strings.Join(msgs, "; ")
}
