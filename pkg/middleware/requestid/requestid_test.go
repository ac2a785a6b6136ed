package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRequest(t *testing.T, inbound string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	r.ServeHTTP(w, req)
	return w, seen
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	w, seen := runRequest(t, "")
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(Header))
}

func TestRequestIDHonorsUpstreamHeader(t *testing.T) {
	_, seen := runRequest(t, "proxy-abc-123")
	assert.Equal(t, "proxy-abc-123", seen)
}

func TestRequestIDReplacesOversizedHeader(t *testing.T) {
	inbound := strings.Repeat("x", 200)
	_, seen := runRequest(t, inbound)
	require.NotEmpty(t, seen)
	assert.NotEqual(t, inbound, seen)
}
