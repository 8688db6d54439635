package httpvalidator

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// BaseRoute Tests
// =============================================================================

func TestBaseRoute(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/a/b/?q=1", "/a/b"},
		{"/a/b?q=1", "/a/b"},
		{"/a/b/", "/a/b"},
		{"/a/b", "/a/b"},
		{"/x/?q=1", "/x"},
		{"/", ""},
		{"", ""},
		{"/a//", "/a/"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseRoute(tt.in))
		})
	}
}

// =============================================================================
// NewPathMatcher Tests
// =============================================================================

func TestNewPathMatcher(t *testing.T) {
	t.Run("creates matcher for simple path", func(t *testing.T) {
		pm, err := NewPathMatcher("/pets")
		require.NoError(t, err)
		assert.Equal(t, "/pets", pm.Template())
		assert.Empty(t, pm.ParamNames())
	})

	t.Run("creates matcher for path with multiple parameters", func(t *testing.T) {
		pm, err := NewPathMatcher("/users/{userId}/posts/{postId}")
		require.NoError(t, err)
		assert.Equal(t, []string{"userId", "postId"}, pm.ParamNames())
	})

	t.Run("root template matches root route", func(t *testing.T) {
		pm, err := NewPathMatcher("/")
		require.NoError(t, err)
		matched, _ := pm.Match(BaseRoute("/"))
		assert.True(t, matched)
	})

	t.Run("errors on unclosed brace", func(t *testing.T) {
		_, err := NewPathMatcher("/pets/{petId")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unclosed")
	})

	t.Run("errors on empty parameter name", func(t *testing.T) {
		_, err := NewPathMatcher("/pets/{}")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty path parameter")
	})

	t.Run("errors on duplicate parameter names", func(t *testing.T) {
		_, err := NewPathMatcher("/users/{id}/posts/{id}")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("escapes regex special characters", func(t *testing.T) {
		pm, err := NewPathMatcher("/api.v1/users")
		require.NoError(t, err)

		matched, _ := pm.Match("/api.v1/users")
		assert.True(t, matched)
		matched, _ = pm.Match("/apiXv1/users")
		assert.False(t, matched)
	})
}

// =============================================================================
// PathMatcher.Match Tests
// =============================================================================

func TestPathMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		template string
		route    string
		matched  bool
		params   map[string]string
	}{
		{"exact", "/pets", "/pets", true, map[string]string{}},
		{"single param", "/pets/{petId}", "/pets/123", true, map[string]string{"petId": "123"}},
		{"two params", "/a/{x}/b/{y}", "/a/1/b/2", true, map[string]string{"x": "1", "y": "2"}},
		{"param within segment", "/files/{name}.json", "/files/report.json", true, map[string]string{"name": "report"}},
		{"percent-encoded value", "/pets/{name}", "/pets/mr%20fluffy", true, map[string]string{"name": "mr fluffy"}},
		{"extra segment", "/pets/{petId}", "/pets/1/toys", false, nil},
		{"missing segment", "/pets/{petId}/toys", "/pets/1", false, nil},
		{"empty placeholder", "/pets/{petId}", "/pets/", false, nil},
		{"literal mismatch", "/pets/{petId}", "/cats/1", false, nil},
		{"prefix only", "/pets", "/pets2", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, err := NewPathMatcher(tt.template)
			require.NoError(t, err)
			matched, params := pm.Match(tt.route)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestExtractParams(t *testing.T) {
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, ExtractParams("/a/{x}/b/{y}", "/a/1/b/2"))
	assert.Equal(t, map[string]string{"x": "1"}, ExtractParams("/a/{x}", "/a/1/?q=2"))
	assert.Nil(t, ExtractParams("/a/{x}", "/b/1"))
	assert.Nil(t, ExtractParams("/a/{x", "/a/1"))
}

// =============================================================================
// PathMatcherSet Tests
// =============================================================================

func TestPathMatcherSet_Match(t *testing.T) {
	set, err := NewPathMatcherSet([]string{"/pets/{petId}", "/pets/mine", "/owners/{id}"}, "/v1")
	require.NoError(t, err)

	t.Run("first declared template wins", func(t *testing.T) {
		template, params, found := set.Match("/pets/mine")
		require.True(t, found)
		assert.Equal(t, "/pets/{petId}", template)
		assert.Equal(t, "mine", params["petId"])
	})

	t.Run("query and trailing slash are ignored", func(t *testing.T) {
		template, _, found := set.Match("/owners/7/?verbose=true")
		require.True(t, found)
		assert.Equal(t, "/owners/{id}", template)
	})

	t.Run("basePath prefix is retried", func(t *testing.T) {
		template, params, found := set.Match("/v1/owners/7")
		require.True(t, found)
		assert.Equal(t, "/owners/{id}", template)
		assert.Equal(t, "7", params["id"])
	})

	t.Run("no match", func(t *testing.T) {
		_, _, found := set.Match("/v2/owners/7")
		assert.False(t, found)
	})

	t.Run("templates keep declaration order", func(t *testing.T) {
		assert.Equal(t, []string{"/pets/{petId}", "/pets/mine", "/owners/{id}"}, set.Templates())
	})
}

func TestNewPathMatcherSet_InvalidTemplate(t *testing.T) {
	_, err := NewPathMatcherSet([]string{"/ok", "/bad/{"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed")
}

// =============================================================================
// Properties
// =============================================================================

// segmentGen generates non-empty path segments without "/" or braces.
func segmentGen() gopter.Gen {
	return gen.Identifier()
}

func TestPathMatcher_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// templates alternate literal and placeholder segments; the route fills
	// placeholders with arbitrary segment text
	build := func(literals, values []string) (string, string) {
		var tmpl, route strings.Builder
		for i, lit := range literals {
			tmpl.WriteString("/" + lit)
			route.WriteString("/" + lit)
			if i < len(values) {
				tmpl.WriteString("/{p" + string(rune('a'+i%26)) + string(rune('0'+i/26)) + "}")
				route.WriteString("/" + values[i])
			}
		}
		return tmpl.String(), route.String()
	}

	properties.Property("equal segment counts with literal matches succeed", prop.ForAll(
		func(literals, values []string) bool {
			tmpl, route := build(literals, values)
			pm, err := NewPathMatcher(tmpl)
			if err != nil {
				return false
			}
			matched, params := pm.Match(route)
			return matched && len(params) == min(len(literals), len(values))
		},
		gen.SliceOfN(3, segmentGen()),
		gen.SliceOfN(3, segmentGen()),
	))

	properties.Property("changing a literal segment fails", prop.ForAll(
		func(literals, values []string) bool {
			tmpl, _ := build(literals, values)
			changed := make([]string, len(literals))
			copy(changed, literals)
			changed[0] = literals[0] + "x"
			_, route := build(changed, values)
			pm, err := NewPathMatcher(tmpl)
			if err != nil {
				return false
			}
			matched, _ := pm.Match(route)
			return !matched
		},
		gen.SliceOfN(3, segmentGen()),
		gen.SliceOfN(3, segmentGen()),
	))

	properties.Property("changing the segment count fails", prop.ForAll(
		func(literals, values []string, extra string) bool {
			tmpl, route := build(literals, values)
			pm, err := NewPathMatcher(tmpl)
			if err != nil {
				return false
			}
			longer, _ := pm.Match(route + "/" + extra)
			shorter, _ := pm.Match(route[:strings.LastIndexByte(route, '/')])
			return !longer && !shorter
		},
		gen.SliceOfN(3, segmentGen()),
		gen.SliceOfN(3, segmentGen()),
		segmentGen(),
	))

	properties.TestingRun(t)
}
