package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasgate/apierrors"
	"github.com/erraggy/oasgate/httpvalidator"
)

func newGinRouter(t *testing.T, opts ...Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := newMiddleware(t, opts...)
	router := gin.New()
	router.Use(m.Gin())

	router.GET("/pets/:petId", func(c *gin.Context) {
		verdict := c.MustGet(GinVerdictKey).(*httpvalidator.Verdict)
		id := verdict.Values["petId"].(int64)
		if id == 99 {
			c.JSON(http.StatusOK, gin.H{"id": "ninety-nine"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "name": "rex"})
	})
	router.POST("/pets", func(c *gin.Context) {
		var pet map[string]any
		if err := c.ShouldBindJSON(&pet); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusCreated, pet)
	})
	router.DELETE("/pets/:petId", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestGin_Request(t *testing.T) {
	router := newGinRouter(t)

	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets/7", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":7,"name":"rex"}`, rec.Body.String())
	})

	t.Run("invalid parameter aborts the chain", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets/seven", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierrors.ContentType, rec.Header().Get("Content-Type"))
	})

	t.Run("body is restored for binding", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(`{"id":3,"name":"tom"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"id":3,"name":"tom"}`, rec.Body.String())
	})
}

func TestGin_Response(t *testing.T) {
	router := newGinRouter(t, WithResponseValidation(true))

	t.Run("valid response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets/7", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, `{"id":7,"name":"rex"}`, rec.Body.String())
	})

	t.Run("violating response is replaced", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets/99", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), apierrors.CodeInvalidResponseBody)
		assert.NotContains(t, rec.Body.String(), "ninety-nine")
	})

	t.Run("no content", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/pets/7", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
