package contract

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasgate/internal/httputil"
)

// parameterOnlyKeys are parameter-object keys that are not JSON-Schema keywords.
// They are removed when the inline schema of a non-body parameter is built.
var parameterOnlyKeys = map[string]struct{}{
	"name":            {},
	"in":              {},
	"required":        {},
	"description":     {},
	"schema":          {},
	"allowEmptyValue": {},
	"$ref":            {},
}

// decodeFromMap populates the document from the generic map produced by the decoder.
func (d *Document) decodeFromMap(m map[string]any) {
	d.Raw = m
	d.Swagger = mapGetString(m, "swagger")
	d.BasePath = mapGetString(m, "basePath")
	if info := mapGetMap(m, "info"); info != nil {
		d.Title = mapGetString(info, "title")
		d.Version = mapGetString(info, "version")
	}

	if defs := mapGetMap(m, "definitions"); defs != nil {
		d.Definitions = make(map[string]*Schema, len(defs))
		for name, v := range defs {
			if sm, ok := v.(map[string]any); ok {
				d.Definitions[name] = decodeSchema(sm)
			}
		}
	}

	if params := mapGetMap(m, "parameters"); params != nil {
		d.Parameters = make(map[string]*Parameter, len(params))
		for name, v := range params {
			if pm, ok := v.(map[string]any); ok {
				d.Parameters[name] = decodeParameter(pm)
			}
		}
	}

	if resps := mapGetMap(m, "responses"); resps != nil {
		d.Responses = make(map[string]*Response, len(resps))
		for name, v := range resps {
			if rm, ok := v.(map[string]any); ok {
				d.Responses[name] = decodeResponse(rm)
			}
		}
	}

	if paths := mapGetMap(m, "paths"); paths != nil {
		d.Paths = make(map[string]*PathItem, len(paths))
		for template, v := range paths {
			if pm, ok := v.(map[string]any); ok {
				d.Paths[template] = decodePathItem(pm)
			}
		}
	}
}

func decodePathItem(m map[string]any) *PathItem {
	item := &PathItem{
		Parameters: decodeParameterList(m, "parameters"),
		Operations: make(map[string]*Operation),
	}
	for key, v := range m {
		method := strings.ToLower(key)
		if !isHTTPMethod(method) {
			continue
		}
		if om, ok := v.(map[string]any); ok {
			item.Operations[method] = decodeOperation(om)
		}
	}
	return item
}

func isHTTPMethod(s string) bool {
	for _, m := range httputil.Methods {
		if m == s {
			return true
		}
	}
	return false
}

func decodeOperation(m map[string]any) *Operation {
	op := &Operation{
		OperationID: mapGetString(m, "operationId"),
		Summary:     mapGetString(m, "summary"),
		Parameters:  decodeParameterList(m, "parameters"),
	}
	if resps := mapGetMap(m, "responses"); resps != nil {
		op.Responses = make(map[string]*Response, len(resps))
		for code, v := range resps {
			if rm, ok := v.(map[string]any); ok {
				op.Responses[code] = decodeResponse(rm)
			}
		}
	}
	return op
}

func decodeParameterList(m map[string]any, key string) []*Parameter {
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	params := make([]*Parameter, 0, len(arr))
	for _, v := range arr {
		if pm, ok := v.(map[string]any); ok {
			params = append(params, decodeParameter(pm))
		}
	}
	return params
}

func decodeParameter(m map[string]any) *Parameter {
	p := &Parameter{
		Ref:         mapGetString(m, "$ref"),
		Name:        mapGetString(m, "name"),
		In:          mapGetString(m, "in"),
		Description: mapGetString(m, "description"),
		Required:    mapGetBool(m, "required"),
	}
	if p.Ref != "" {
		return p
	}
	if p.In == "form" {
		p.In = LocationForm
	}
	if sm := mapGetMap(m, "schema"); sm != nil {
		p.Schema = decodeSchema(sm)
	}
	p.Inline = decodeSchema(stripKeys(m, parameterOnlyKeys))
	return p
}

func decodeResponse(m map[string]any) *Response {
	r := &Response{
		Ref:         mapGetString(m, "$ref"),
		Description: mapGetString(m, "description"),
	}
	if r.Ref != "" {
		return r
	}
	if sm := mapGetMap(m, "schema"); sm != nil {
		r.Schema = decodeSchema(sm)
	}
	if headers := mapGetMap(m, "headers"); headers != nil {
		r.Headers = make(map[string]*Schema, len(headers))
		for name, v := range headers {
			if hm, ok := v.(map[string]any); ok {
				r.Headers[name] = decodeSchema(stripKeys(hm, parameterOnlyKeys))
			}
		}
	}
	return r
}

func decodeSchema(m map[string]any) *Schema {
	s := &Schema{
		Ref:              mapGetString(m, "$ref"),
		Type:             mapGetString(m, "type"),
		Format:           mapGetString(m, "format"),
		CollectionFormat: mapGetString(m, "collectionFormat"),
		Default:          m["default"],
		Raw:              m,
	}
	if items := mapGetMap(m, "items"); items != nil {
		s.Items = decodeSchema(items)
	}
	if props := mapGetMap(m, "properties"); props != nil {
		s.Properties = make(map[string]*Schema, len(props))
		for name, v := range props {
			if pm, ok := v.(map[string]any); ok {
				s.Properties[name] = decodeSchema(pm)
			}
		}
	}
	return s
}

// stripKeys returns a shallow copy of m without the given keys.
func stripKeys(m map[string]any, keys map[string]struct{}) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, skip := keys[k]; skip {
			continue
		}
		out[k] = v
	}
	return out
}

// mapGetString extracts a string from m[key], returning "" when absent or not a string.
func mapGetString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// mapGetBool extracts a bool from m[key], returning false when absent or not a bool.
func mapGetBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// mapGetMap extracts a nested object from m[key].
func mapGetMap(m map[string]any, key string) map[string]any {
	sm, _ := m[key].(map[string]any)
	return sm
}

// normalizeValue converts the map[any]any values YAML produces for mappings with
// non-string keys (e.g. unquoted status codes) into map[string]any, recursively.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeValue(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeValue(val)
		}
		return t
	default:
		return v
	}
}
