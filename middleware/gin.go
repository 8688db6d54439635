package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinVerdictKey is the gin context key the request verdict is stored under.
const GinVerdictKey = "oasgate.verdict"

// Gin returns the middleware as a gin handler. Rejected requests abort the
// chain. The verdict is stored in the request context and under GinVerdictKey.
func (m *Middleware) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		r, req, ok := m.checkRequest(c.Writer, c.Request)
		if !ok {
			c.Abort()
			return
		}
		c.Request = r
		if verdict, found := VerdictFromContext(r.Context()); found {
			c.Set(GinVerdictKey, verdict)
		}

		if !m.validateResponses {
			c.Next()
			return
		}

		original := c.Writer
		rec := newResponseRecorder(original)
		c.Writer = &ginRecorder{ResponseWriter: original, rec: rec}
		c.Next()
		c.Writer = original
		m.finishResponse(r.Context(), rec, req)
	}
}

// ginRecorder routes the writes of gin handlers into a responseRecorder.
type ginRecorder struct {
	gin.ResponseWriter
	rec *responseRecorder
}

func (g *ginRecorder) Header() http.Header {
	return g.rec.Header()
}

// WriteHeader records the status only; like gin's writer it may be changed
// until the header is flushed by WriteHeaderNow or the first write.
func (g *ginRecorder) WriteHeader(code int) {
	if code > 0 && !g.rec.wroteHeader {
		g.rec.status = code
	}
}

func (g *ginRecorder) WriteHeaderNow() {
	if !g.rec.wroteHeader {
		g.rec.WriteHeader(g.rec.status)
	}
}

func (g *ginRecorder) Write(p []byte) (int, error) {
	return g.rec.Write(p)
}

func (g *ginRecorder) WriteString(s string) (int, error) {
	return g.rec.Write([]byte(s))
}

func (g *ginRecorder) Status() int {
	return g.rec.status
}

func (g *ginRecorder) Size() int {
	if !g.rec.wroteHeader {
		return -1
	}
	return g.rec.body.Len()
}

func (g *ginRecorder) Written() bool {
	return g.rec.wroteHeader
}

func (g *ginRecorder) Flush() {}
