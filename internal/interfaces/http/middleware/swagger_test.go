package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func swaggerRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	w := swaggerRequest(swaggerRouter(SwaggerConfig{Enabled: false}, nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}

func TestSwaggerProtection_Open(t *testing.T) {
	w := swaggerRequest(swaggerRouter(SwaggerConfig{Enabled: true}, nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs", w.Body.String())
}

func TestSwaggerProtection_AllowList(t *testing.T) {
	router := swaggerRouter(SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"10.0.0.0/8", "192.168.1.20", "not-an-ip"},
	}, nil)

	assert.Equal(t, http.StatusOK, swaggerRequest(router, "10.1.2.3:5000").Code)
	assert.Equal(t, http.StatusOK, swaggerRequest(router, "192.168.1.20:5000").Code)
	w := swaggerRequest(router, "192.168.1.21:5000")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	allow := func(c *gin.Context) { c.Next() }

	assert.Equal(t, http.StatusUnauthorized,
		swaggerRequest(swaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, deny), "").Code)
	assert.Equal(t, http.StatusOK,
		swaggerRequest(swaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, allow), "").Code)
}

func TestIPAllowed(t *testing.T) {
	prefixes := parseAllowedIPs([]string{"127.0.0.1", "::1", "172.16.0.0/12", " 203.0.113.7 "})

	assert.True(t, ipAllowed("127.0.0.1", prefixes))
	assert.True(t, ipAllowed("::1", prefixes))
	assert.True(t, ipAllowed("172.20.5.9", prefixes))
	assert.True(t, ipAllowed("::ffff:203.0.113.7", prefixes))
	assert.False(t, ipAllowed("172.32.0.1", prefixes))
	assert.False(t, ipAllowed("", prefixes))
	assert.False(t, ipAllowed("garbage", prefixes))
}
