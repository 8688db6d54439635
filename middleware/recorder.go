package middleware

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/erraggy/oasgate/httpvalidator"
)

// responseRecorder buffers a handler's response so it can be validated
// before any byte reaches the client.
type responseRecorder struct {
	w http.ResponseWriter

	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer

	once    sync.Once
	verdict *httpvalidator.Verdict
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{w: w, header: http.Header{}, status: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(r.status)
	}
	return r.body.Write(p)
}

// snapshot returns the buffered response.
func (r *responseRecorder) snapshot() *httpvalidator.Response {
	return &httpvalidator.Response{
		StatusCode: r.status,
		Header:     r.header,
		Body:       r.body.Bytes(),
	}
}

// finalize runs validate exactly once and stores its verdict. Later calls
// return the stored verdict without validating or sending again.
func (r *responseRecorder) finalize(validate func(*httpvalidator.Response) *httpvalidator.Verdict) *httpvalidator.Verdict {
	r.once.Do(func() {
		r.verdict = validate(r.snapshot())
	})
	return r.verdict
}

// send copies the buffered response to the underlying writer.
func (r *responseRecorder) send() {
	dst := r.w.Header()
	for name, values := range r.header {
		dst[name] = values
	}
	r.w.WriteHeader(r.status)
	if r.body.Len() > 0 {
		_, _ = r.w.Write(r.body.Bytes())
	}
}
