package contract

import "strings"

// Reference prefixes of the top-level sections a $ref may address.
const (
	ParametersPrefix  = "#/parameters/"
	ResponsesPrefix   = "#/responses/"
	DefinitionsPrefix = "#/definitions/"
)

// refName returns the decoded final token of ref when it addresses prefix.
// Nested pointers (".../a/b") are not addressable in these sections.
func refName(ref, prefix string) (string, bool) {
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	name := ref[len(prefix):]
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return unescapePointer(name), true
}

// unescapePointer decodes JSON-pointer escapes: "~1" is "/" and "~0" is "~".
// Reference: RFC 6901 section 4.
func unescapePointer(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// ResolveParameter looks up a "#/parameters/<name>" reference.
// The second result is false when the reference is malformed or dangling.
func (d *Document) ResolveParameter(ref string) (*Parameter, bool) {
	name, ok := refName(ref, ParametersPrefix)
	if !ok {
		return nil, false
	}
	p, ok := d.Parameters[name]
	if !ok || p == nil || p.IsRef() {
		return nil, false
	}
	return p, true
}

// ResolveResponse looks up a "#/responses/<name>" reference.
// The second result is false when the reference is malformed or dangling.
func (d *Document) ResolveResponse(ref string) (*Response, bool) {
	name, ok := refName(ref, ResponsesPrefix)
	if !ok {
		return nil, false
	}
	r, ok := d.Responses[name]
	if !ok || r == nil || r.IsRef() {
		return nil, false
	}
	return r, true
}

// ResolveSchema looks up a "#/definitions/<name>" reference.
// The second result is false when the reference is malformed or dangling.
func (d *Document) ResolveSchema(ref string) (*Schema, bool) {
	name, ok := refName(ref, DefinitionsPrefix)
	if !ok {
		return nil, false
	}
	s, ok := d.Definitions[name]
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

// Param returns p itself, or the shared parameter it references.
// Resolving an already-resolved parameter is a no-op.
func (d *Document) Param(p *Parameter) (*Parameter, bool) {
	if p == nil {
		return nil, false
	}
	if !p.IsRef() {
		return p, true
	}
	return d.ResolveParameter(p.Ref)
}

// Resp returns r itself, or the shared response it references.
// Resolving an already-resolved response is a no-op.
func (d *Document) Resp(r *Response) (*Response, bool) {
	if r == nil {
		return nil, false
	}
	if !r.IsRef() {
		return r, true
	}
	return d.ResolveResponse(r.Ref)
}

// DerefSchema follows a chain of "#/definitions/..." references from s and
// returns the first schema that is not a reference. Cycles and dangling
// references yield nil.
func (d *Document) DerefSchema(s *Schema) *Schema {
	seen := make(map[*Schema]bool)
	for s != nil && !seen[s] {
		seen[s] = true
		if s.Ref == "" {
			return s
		}
		next, ok := d.ResolveSchema(s.Ref)
		if !ok {
			return nil
		}
		s = next
	}
	return nil
}

// TopLevelType returns the declared type of s after following references.
func (d *Document) TopLevelType(s *Schema) string {
	if target := d.DerefSchema(s); target != nil {
		return target.Type
	}
	return ""
}

// OperationParameters returns the effective parameter list of an operation:
// path-level parameters first, then operation parameters, with an operation
// parameter replacing a path-level one of the same name and location.
// References are resolved into a fresh slice; dangling references are dropped
// and reported through the second result. The document is not modified.
func (d *Document) OperationParameters(item *PathItem, op *Operation) ([]*Parameter, []string) {
	var dangling []string
	resolve := func(list []*Parameter) []*Parameter {
		out := make([]*Parameter, 0, len(list))
		for _, p := range list {
			rp, ok := d.Param(p)
			if !ok {
				if p != nil {
					dangling = append(dangling, p.Ref)
				}
				continue
			}
			out = append(out, rp)
		}
		return out
	}

	var opParams []*Parameter
	if op != nil {
		opParams = resolve(op.Parameters)
	}
	var pathParams []*Parameter
	if item != nil {
		pathParams = resolve(item.Parameters)
	}
	if len(pathParams) == 0 {
		return opParams, dangling
	}

	overridden := make(map[string]bool, len(opParams))
	for _, p := range opParams {
		overridden[p.In+"\x00"+p.Name] = true
	}
	merged := make([]*Parameter, 0, len(pathParams)+len(opParams))
	for _, p := range pathParams {
		if !overridden[p.In+"\x00"+p.Name] {
			merged = append(merged, p)
		}
	}
	return append(merged, opParams...), dangling
}
