package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates ulid", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/test", nil)
		id := w.Header().Get(RequestIDHeader)
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps client id", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/test", map[string]string{RequestIDHeader: "support-1234"})
		assert.Equal(t, "support-1234", w.Header().Get(RequestIDHeader))
	})

	t.Run("replaces unusable client id", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/test", map[string]string{RequestIDHeader: strings.Repeat("a", maxRequestIDLength+1)})
		_, err := ulid.ParseStrict(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})
}

func TestValidRequestID(t *testing.T) {
	assert.True(t, validRequestID("01J9ZK3M6Q"))
	assert.False(t, validRequestID(""))
	assert.False(t, validRequestID("has space"))
	assert.False(t, validRequestID("tab\tid"))
	assert.False(t, validRequestID("mã-số"))
}
