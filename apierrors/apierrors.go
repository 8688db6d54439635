package apierrors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/erraggy/oasgate/httpvalidator"
)

// ContentType is the media type of an error document.
const ContentType = "application/vnd.api+json; charset=utf-8"

// Scope says which side of the exchange a verdict belongs to.
type Scope int

const (
	// ScopeRequest translates request verdicts; the document status is the
	// highest status among its errors.
	ScopeRequest Scope = iota + 1
	// ScopeResponse translates response verdicts; the document status is
	// always 500 since the server broke its own contract.
	ScopeResponse
)

// String returns "request" or "response".
func (s Scope) String() string {
	switch s {
	case ScopeRequest:
		return "request"
	case ScopeResponse:
		return "response"
	default:
		return "Scope(" + strconv.Itoa(int(s)) + ")"
	}
}

// Error codes.
const (
	CodeRouteNotFound          = "ROUTE_NOT_FOUND"
	CodeMissingParameter       = "MISSING_PARAMETER"
	CodeBadRequest             = "BAD_REQUEST"
	CodeInvalidResponseHeader  = "INVALID_RESPONSE_HEADER"
	CodeMissingResponseHeader  = "MISSING_RESPONSE_HEADER"
	CodeInvalidResponseBody    = "INVALID_RESPONSE_BODY"
	CodeMissingResponseBody    = "MISSING_RESPONSE_BODY"
	CodeUnexpectedResponseBody = "UNEXPECTED_RESPONSE_BODY"
	CodeInvalidResponseCode    = "INVALID_RESPONSE_CODE"
)

// Error is a single JSON:API error object.
// See: https://jsonapi.org/format/#error-objects
type Error struct {
	ID     string  `json:"id" yaml:"id"`
	Code   string  `json:"code" yaml:"code"`
	Status string  `json:"status" yaml:"status"`
	Title  string  `json:"title" yaml:"title"`
	Detail string  `json:"detail" yaml:"detail"`
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`
}

// Source points at the part of the exchange that caused an error.
type Source struct {
	// Parameter is the contract name of the offending parameter.
	Parameter string `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	// Header is the name of the offending response header.
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
	// Pointer is a JSON Pointer into the offending body, e.g. "/pets/0/id".
	Pointer string `json:"pointer,omitempty" yaml:"pointer,omitempty"`
}

// Document is a JSON:API error document.
type Document struct {
	// Status is the HTTP status to send the document with.
	Status int     `json:"-" yaml:"-"`
	Errors []Error `json:"errors" yaml:"errors"`
}

// newID generates error ids. Replaced in tests.
var newID = uuid.NewString

// Translate converts the errors of verdict into an error document. method is
// the request method, used in route-not-found details.
//
// Only the kinds belonging to scope are translated; other kinds are skipped.
// Each violation of an invalid parameter becomes its own BAD_REQUEST error.
// A verdict without translatable errors yields a document with status 200 and
// no errors.
func Translate(scope Scope, verdict *httpvalidator.Verdict, method string) *Document {
	doc := &Document{Status: http.StatusOK, Errors: []Error{}}
	if verdict == nil {
		return doc
	}

	for _, ve := range verdict.Errors {
		var translated []Error
		if scope == ScopeResponse {
			translated = translateResponse(ve)
		} else {
			translated = translateRequest(ve, method)
		}
		for _, e := range translated {
			status, _ := strconv.Atoi(e.Status)
			doc.Status = max(doc.Status, status)
			doc.Errors = append(doc.Errors, e)
		}
	}

	if scope == ScopeResponse && len(doc.Errors) > 0 {
		doc.Status = http.StatusInternalServerError
	}
	return doc
}

func translateRequest(ve httpvalidator.ValidationError, method string) []Error {
	switch ve.Kind {
	case httpvalidator.KindRouteNotFound:
		return []Error{newError(CodeRouteNotFound, http.StatusNotFound, "Route not found",
			fmt.Sprintf("Route '%s %s' could not be found. Refer to docs for a complete list of routes.",
				strings.ToUpper(method), ve.Route),
			nil)}

	case httpvalidator.KindParameterNotFound:
		return []Error{newError(CodeMissingParameter, http.StatusBadRequest, "Missing required parameter",
			fmt.Sprintf("Required parameter '%s' could not be found in %s.", ve.Name, ve.Location),
			&Source{Parameter: ve.Name})}

	case httpvalidator.KindParameterInvalid:
		out := make([]Error, 0, len(ve.Violations))
		for _, v := range ve.Violations {
			src := &Source{Parameter: ve.Name}
			if ve.Location == "body" || ve.Location == "formData" {
				src.Pointer = pointer(v.Property)
			}
			out = append(out, newError(CodeBadRequest, http.StatusBadRequest, "Request value is invalid",
				violationDetail(ve.Name, v), src))
		}
		return out

	default:
		return nil
	}
}

func translateResponse(ve httpvalidator.ValidationError) []Error {
	const suffix = " (INTERNAL SERVER ERROR)"
	status := http.StatusInternalServerError

	switch ve.Kind {
	case httpvalidator.KindHeaderInvalid:
		return []Error{newError(CodeInvalidResponseHeader, status, "Response header is invalid."+suffix,
			violationsDetail(ve.Name, ve.Violations), &Source{Header: ve.Name})}

	case httpvalidator.KindHeaderMissing:
		return []Error{newError(CodeMissingResponseHeader, status, "Required response header is missing."+suffix,
			fmt.Sprintf("Response header '%s' is required but was not sent.", ve.Name), &Source{Header: ve.Name})}

	case httpvalidator.KindBodyInvalid:
		var src *Source
		if len(ve.Violations) > 0 {
			if p := pointer(ve.Violations[0].Property); p != "" {
				src = &Source{Pointer: p}
			}
		}
		return []Error{newError(CodeInvalidResponseBody, status, "Response body is invalid."+suffix,
			responseBodyDetail(ve.Violations), src)}

	case httpvalidator.KindBodyMissing:
		return []Error{newError(CodeMissingResponseBody, status, "Response body is missing."+suffix,
			"A response body is defined for this status code but none was sent.", nil)}

	case httpvalidator.KindBodyUnexpected:
		return []Error{newError(CodeUnexpectedResponseBody, status, "Response body is unexpected."+suffix,
			"No response body is defined for this status code but one was sent.", nil)}

	case httpvalidator.KindStatusUndefined:
		return []Error{newError(CodeInvalidResponseCode, status, "Undefined response for status code."+suffix,
			fmt.Sprintf("No response is defined for status code '%d' and no default response is defined.", ve.StatusCode),
			nil)}

	default:
		return nil
	}
}

func newError(code string, status int, title, detail string, src *Source) Error {
	return Error{
		ID:     newID(),
		Code:   code,
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
		Source: src,
	}
}

// violationDetail renders one violation with the property path re-rooted at
// name: "Parameter 'limit' (abc) is not an integer." or
// "Property 'pet.id' (x) ...".
func violationDetail(name string, v httpvalidator.Violation) string {
	return detailFor("Parameter '"+name+"'", name, v)
}

// detailFor renders one violation, naming the root value root and nested
// properties by their path under name.
func detailFor(root, name string, v httpvalidator.Violation) string {
	instanceName := strings.Replace(v.Property, "instance", name, 1)
	subject := "Property '" + instanceName + "'"
	if instanceName == name {
		subject = root
	}

	value := " "
	if v.Instance != nil {
		value = " (" + display(v.Instance) + ") "
	}
	return subject + value + strings.TrimSuffix(v.Message, ".") + "."
}

// responseBodyDetail is violationsDetail for a response body, whose root has
// no parameter name: "Response body (3) got number, want object."
func responseBodyDetail(violations []httpvalidator.Violation) string {
	if len(violations) == 0 {
		return "Response body does not match its schema."
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = detailFor("Response body", "body", v)
	}
	return strings.Join(parts, " ")
}

func violationsDetail(name string, violations []httpvalidator.Violation) string {
	if len(violations) == 0 {
		return "Value of '" + name + "' does not match its schema."
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = violationDetail(name, v)
	}
	return strings.Join(parts, " ")
}

// display renders an offending value: scalars as-is, composites as JSON.
func display(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}

// pointer converts a violation property ("instance.pets.0") into a JSON
// Pointer ("/pets/0"). The root is "".
func pointer(property string) string {
	rest, ok := strings.CutPrefix(property, "instance")
	if !ok || rest == "" {
		return ""
	}
	segments := strings.Split(strings.TrimPrefix(rest, "."), ".")
	for i, s := range segments {
		s = strings.ReplaceAll(s, "~", "~0")
		segments[i] = strings.ReplaceAll(s, "/", "~1")
	}
	return "/" + strings.Join(segments, "/")
}

// Write sends the document with its status and content type.
func (d *Document) Write(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(d.Status)
	return json.NewEncoder(w).Encode(d)
}
