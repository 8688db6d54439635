package httpvalidator

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasgate/contract"
)

func jsonResponse(status int, body string) *Response {
	return &Response{StatusCode: status, Header: http.Header{}, Body: []byte(body)}
}

// =============================================================================
// Status selection
// =============================================================================

func TestValidateResponse_Status(t *testing.T) {
	v := newPetstoreValidator(t)

	t.Run("undefined status without default", func(t *testing.T) {
		verdict, err := v.ValidateResponse(&Request{Method: "GET", URL: "/pets/12"}, jsonResponse(418, ""))
		require.NoError(t, err)
		assert.False(t, verdict.Valid)
		require.Len(t, verdict.Errors, 1)

		e := verdict.Errors[0]
		assert.Equal(t, KindStatusUndefined, e.Kind)
		assert.Equal(t, 418, e.StatusCode)
		assert.Equal(t, "response.status", e.Path)
		assert.Equal(t, 418, verdict.StatusCode)
	})

	t.Run("dangling response reference is undefined", func(t *testing.T) {
		verdict, err := v.ValidateResponse(&Request{Method: "GET", URL: "/pets/12"}, jsonResponse(404, `{"code":404,"message":"gone"}`))
		require.NoError(t, err)
		require.Len(t, verdict.Errors, 1)
		assert.Equal(t, KindStatusUndefined, verdict.Errors[0].Kind)
	})

	t.Run("default response by reference", func(t *testing.T) {
		verdict, err := v.ValidateResponse(&Request{Method: "GET", URL: "/pets"}, jsonResponse(503, `{"code":503,"message":"down"}`))
		require.NoError(t, err)
		assert.True(t, verdict.Valid)
		assert.Equal(t, "/pets", verdict.MatchedPath)
	})

	t.Run("default response body is validated", func(t *testing.T) {
		verdict, err := v.ValidateResponse(&Request{Method: "GET", URL: "/pets"}, jsonResponse(500, `{"code":"oops"}`))
		require.NoError(t, err)
		require.Len(t, verdict.Errors, 1)
		assert.Equal(t, KindBodyInvalid, verdict.Errors[0].Kind)
		assert.Equal(t, "response.body", verdict.Errors[0].Path)
	})

	t.Run("unresolved route yields a valid verdict", func(t *testing.T) {
		verdict, err := v.ValidateResponse(&Request{Method: "GET", URL: "/stores"}, jsonResponse(200, "{}"))
		require.NoError(t, err)
		assert.True(t, verdict.Valid)
	})
}

// =============================================================================
// Headers
// =============================================================================

func TestValidateResponse_Headers(t *testing.T) {
	v := newPetstoreValidator(t)
	req := &Request{Method: "GET", URL: "/pets"}
	body := `[{"id":1,"name":"rex"}]`

	t.Run("valid header", func(t *testing.T) {
		resp := jsonResponse(200, body)
		resp.Header.Set("x-test", "5")
		verdict, err := v.ValidateResponse(req, resp)
		require.NoError(t, err)
		assert.True(t, verdict.Valid)
	})

	t.Run("each occurrence is validated", func(t *testing.T) {
		resp := jsonResponse(200, body)
		resp.Header.Add("x-test", "a")
		resp.Header.Add("x-test", "b")
		verdict, err := v.ValidateResponse(req, resp)
		require.NoError(t, err)
		assert.False(t, verdict.Valid)

		errs := verdict.ErrorsOfKind(KindHeaderInvalid)
		require.Len(t, errs, 2)
		assert.Equal(t, "a", errs[0].Violations[0].Instance)
		assert.Equal(t, "b", errs[1].Violations[0].Instance)
		assert.Equal(t, "response.header.x-test", errs[0].Path)
	})

	t.Run("mixed occurrences", func(t *testing.T) {
		resp := jsonResponse(200, body)
		resp.Header.Add("x-test", "1")
		resp.Header.Add("x-test", "b")
		verdict, err := v.ValidateResponse(req, resp)
		require.NoError(t, err)
		assert.Len(t, verdict.ErrorsOfKind(KindHeaderInvalid), 1)
	})

	t.Run("missing header", func(t *testing.T) {
		verdict, err := v.ValidateResponse(req, jsonResponse(200, body))
		require.NoError(t, err)
		require.Len(t, verdict.Errors, 1)
		assert.Equal(t, KindHeaderMissing, verdict.Errors[0].Kind)
		assert.Equal(t, "x-test", verdict.Errors[0].Name)
	})

	t.Run("redacted", func(t *testing.T) {
		resp := jsonResponse(200, body)
		resp.Header.Set("x-test", "a")
		verdict, err := newPetstoreValidator(t, WithRedactHeaders(true)).ValidateResponse(req, resp)
		require.NoError(t, err)
		errs := verdict.ErrorsOfKind(KindHeaderInvalid)
		require.Len(t, errs, 1)
		assert.Nil(t, errs[0].Violations[0].Instance)
	})
}

// =============================================================================
// Body
// =============================================================================

func TestValidateResponse_Body(t *testing.T) {
	v := newPetstoreValidator(t)

	tests := []struct {
		name   string
		method string
		url    string
		status int
		body   string
		kinds  []Kind
	}{
		{"valid object", "GET", "/pets/1", 200, `{"id":1,"name":"rex"}`, nil},
		{"invalid object", "GET", "/pets/1", 200, `{"id":1}`, []Kind{KindBodyInvalid}},
		{"not JSON for object schema", "GET", "/pets/1", 200, `rex`, []Kind{KindBodyInvalid}},
		{"missing body", "GET", "/pets/1", 200, ``, []Kind{KindBodyMissing}},
		{"unexpected body", "DELETE", "/pets/1", 204, `{}`, []Kind{KindBodyUnexpected}},
		{"no body when none declared", "DELETE", "/pets/1", 204, ``, nil},
		{"plain text", "GET", "/health", 200, `OK`, nil},
		{"JSON string literal", "GET", "/health", 200, `"OK"`, nil},
		{"numeric text for string schema", "GET", "/health", 200, `123`, nil},
		{"created", "POST", "/pets", 201, `{"id":2,"name":"tom","tag":"cat"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := v.ValidateResponse(&Request{Method: tt.method, URL: tt.url}, jsonResponse(tt.status, tt.body))
			require.NoError(t, err)

			var kinds []Kind
			for _, e := range verdict.Errors {
				kinds = append(kinds, e.Kind)
			}
			assert.Equal(t, tt.kinds, kinds)
			assert.Equal(t, len(tt.kinds) == 0, verdict.Valid)
		})
	}
}

func TestValidateResponse_BodyViolations(t *testing.T) {
	v := newPetstoreValidator(t)
	resp := jsonResponse(200, `[{"id":1,"name":"rex"},{"id":"two","name":"tom"}]`)
	resp.Header.Set("x-test", "1")

	verdict, err := v.ValidateResponse(&Request{Method: "GET", URL: "/pets"}, resp)
	require.NoError(t, err)
	require.Len(t, verdict.Errors, 1)

	e := verdict.Errors[0]
	require.Len(t, e.Violations, 1)
	assert.Equal(t, "instance.1.id", e.Violations[0].Property)
	assert.Equal(t, "two", e.Violations[0].Instance)
	assert.Contains(t, e.Message, "instance.1.id")
}

func TestDecodeBody(t *testing.T) {
	text := &contract.Schema{Type: "string"}

	assert.Equal(t, "plain", decodeBody([]byte("plain"), nil))
	assert.Equal(t, map[string]any{"a": json.Number("1")}, decodeBody([]byte(`{"a":1}`), nil))
	assert.Equal(t, "42", decodeBody([]byte(`42`), text))
	assert.Equal(t, "hi", decodeBody([]byte(`"hi"`), text))
}
