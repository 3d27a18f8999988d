package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// Request id header and gin context key
const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// maxRequestIDLength bounds client supplied ids before they reach logs
const maxRequestIDLength = 64

// RequestID tags the request with an id, echoed in the response header and
// in error bodies. A printable client id is kept so support can correlate
// it; anything else is replaced with a fresh ULID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = ulid.Make().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// validRequestID accepts 1 to maxRequestIDLength printable ASCII characters
// without spaces.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range []byte(id) {
		if r <= ' ' || r > '~' {
			return false
		}
	}
	return true
}
