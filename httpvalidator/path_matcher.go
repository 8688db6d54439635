package httpvalidator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// PathMatcher handles matching request paths against an OpenAPI path template.
// It converts path templates like "/pets/{petId}" into anchored regex patterns
// and extracts parameter values from actual request paths.
type PathMatcher struct {
	// template is the original OAS path template (e.g., "/pets/{petId}")
	template string

	// regex is the compiled pattern for matching
	regex *regexp.Regexp

	// paramNames are the parameter names in order of appearance
	paramNames []string
}

// BaseRoute normalizes a request URL or a path template for matching: the query
// string is dropped and one trailing slash is removed.
//
//	BaseRoute("/a/b/?q=1") == BaseRoute("/a/b?q=1") == "/a/b"
//	BaseRoute("/") == ""
func BaseRoute(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		rawURL = rawURL[:i]
	}
	return strings.TrimSuffix(rawURL, "/")
}

// NewPathMatcher creates a PathMatcher from an OpenAPI path template.
// The template should be in the format "/path/{param}/more/{param2}" and is
// normalized with BaseRoute before compiling.
//
// Returns an error if the template is malformed (e.g., unclosed braces).
func NewPathMatcher(template string) (*PathMatcher, error) {
	normalized := BaseRoute(template)

	var regexBuf strings.Builder
	regexBuf.WriteString("^")

	var paramNames []string

	i := 0
	for i < len(normalized) {
		if normalized[i] == '{' {
			end := strings.IndexByte(normalized[i:], '}')
			if end == -1 {
				return nil, fmt.Errorf("unclosed path parameter at position %d in template %q", i, template)
			}

			paramName := normalized[i+1 : i+end]
			if paramName == "" {
				return nil, fmt.Errorf("empty path parameter at position %d in template %q", i, template)
			}
			for _, existing := range paramNames {
				if existing == paramName {
					return nil, fmt.Errorf("duplicate path parameter %q in template %q", paramName, template)
				}
			}
			paramNames = append(paramNames, paramName)

			// A placeholder never spans a segment boundary.
			regexBuf.WriteString("([^/]+)")
			i += end + 1
			continue
		}

		c := normalized[i]
		if strings.IndexByte(`\.+*?()|[]{}^$`, c) >= 0 {
			regexBuf.WriteByte('\\')
		}
		regexBuf.WriteByte(c)
		i++
	}

	regexBuf.WriteString("$")

	regex, err := regexp.Compile(regexBuf.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile path pattern for template %q: %w", template, err)
	}

	return &PathMatcher{
		template:   template,
		regex:      regex,
		paramNames: paramNames,
	}, nil
}

// Match checks if the given route matches this template and extracts parameters.
// The route must already be normalized with BaseRoute.
// Returns true and a map of parameter names to values if the route matches.
// Returns false and nil if it does not match.
func (pm *PathMatcher) Match(route string) (bool, map[string]string) {
	matches := pm.regex.FindStringSubmatch(route)
	if matches == nil || len(matches) != len(pm.paramNames)+1 {
		return false, nil
	}

	params := make(map[string]string, len(pm.paramNames))
	for i, name := range pm.paramNames {
		params[name] = unescapeSegment(matches[i+1])
	}
	return true, params
}

// Template returns the original path template.
func (pm *PathMatcher) Template() string {
	return pm.template
}

// ParamNames returns the list of parameter names in order of appearance.
func (pm *PathMatcher) ParamNames() []string {
	return pm.paramNames
}

// unescapeSegment percent-decodes a path segment, keeping the raw text when it
// is not a valid escape sequence.
func unescapeSegment(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

// ExtractParams returns the placeholder values of route for template, matched
// positionally. It returns nil when the route does not match the template.
//
//	ExtractParams("/a/{x}/b/{y}", "/a/1/b/2") // map[x:1 y:2]
func ExtractParams(template, route string) map[string]string {
	pm, err := NewPathMatcher(template)
	if err != nil {
		return nil
	}
	_, params := pm.Match(BaseRoute(route))
	return params
}

// PathMatcherSet holds the path matchers of a contract in declaration order.
// Templates are tried in that order and the first match wins; overlapping
// templates are a contract-authoring concern.
type PathMatcherSet struct {
	matchers []*PathMatcher

	// prefixed holds the same templates prefixed with basePath, tried only
	// when no unprefixed template matches.
	prefixed []*PathMatcher
}

// NewPathMatcherSet creates a PathMatcherSet from path templates in declaration order.
// When basePath is not empty, a second set of matchers with the prefix applied is built.
func NewPathMatcherSet(templates []string, basePath string) (*PathMatcherSet, error) {
	pms := &PathMatcherSet{matchers: make([]*PathMatcher, 0, len(templates))}
	prefix := strings.TrimSuffix(basePath, "/")

	for _, template := range templates {
		matcher, err := NewPathMatcher(template)
		if err != nil {
			return nil, err
		}
		pms.matchers = append(pms.matchers, matcher)

		if prefix != "" {
			withBase, err := NewPathMatcher(prefix + template)
			if err != nil {
				return nil, err
			}
			// report the template as declared, so callers can look it up
			withBase.template = template
			pms.prefixed = append(pms.prefixed, withBase)
		}
	}

	return pms, nil
}

// Match finds the first declared template matching the request path.
// The path may still carry a query string and trailing slash.
// Returns the matched template, extracted parameters, and whether a match was found.
func (pms *PathMatcherSet) Match(path string) (template string, params map[string]string, found bool) {
	route := BaseRoute(path)
	for _, matcher := range pms.matchers {
		if matched, params := matcher.Match(route); matched {
			return matcher.template, params, true
		}
	}
	for _, matcher := range pms.prefixed {
		if matched, params := matcher.Match(route); matched {
			return matcher.template, params, true
		}
	}
	return "", nil, false
}

// Templates returns all path templates in the set, in declaration order.
func (pms *PathMatcherSet) Templates() []string {
	templates := make([]string, len(pms.matchers))
	for i, m := range pms.matchers {
		templates[i] = m.template
	}
	return templates
}
