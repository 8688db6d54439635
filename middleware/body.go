package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/erraggy/oasgate/internal/httputil"
)

// errBodyTooLarge is returned when a request body exceeds the configured limit.
var errBodyTooLarge = errors.New("request body too large")

// maxFormMemory bounds the memory used for multipart form parts.
const maxFormMemory = 1 << 20

// readBody reads the request body and restores it for the next handler.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// parseBody turns a raw request body into the value body and formData
// parameters are validated against. An empty body parses to nil.
//
//   - JSON media types: the decoded document, or the raw text when it does not decode
//   - form media types: a map of field name to value; repeated fields become []string
//   - anything else: the raw text
func parseBody(contentType string, data []byte) any {
	if len(data) == 0 {
		return nil
	}

	switch {
	case httputil.IsJSONMediaType(contentType):
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return string(data)
		}
		return v

	case httputil.IsFormMediaType(contentType):
		values, err := parseForm(contentType, data)
		if err != nil {
			return string(data)
		}
		return formValue(values)

	default:
		return string(data)
	}
}

func parseForm(contentType string, data []byte) (url.Values, error) {
	if httputil.MediaType(contentType) != "multipart/form-data" {
		return url.ParseQuery(string(data))
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, err
	}
	form, err := multipart.NewReader(bytes.NewReader(data), params["boundary"]).ReadForm(maxFormMemory)
	if err != nil {
		return nil, err
	}
	defer func() { _ = form.RemoveAll() }()

	values := url.Values{}
	for name, vs := range form.Value {
		values[name] = append(values[name], vs...)
	}
	// file parts are represented by their file names
	for name, files := range form.File {
		for _, fh := range files {
			values.Add(name, fh.Filename)
		}
	}
	return values, nil
}

func formValue(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for name, vs := range values {
		if len(vs) == 1 {
			out[name] = vs[0]
			continue
		}
		out[name] = vs
	}
	return out
}
