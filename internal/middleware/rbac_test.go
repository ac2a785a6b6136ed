package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

func runMiddleware(t *testing.T, mw gin.HandlerFunc, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/probe", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, mw, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req, _ := http.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAllows(t *testing.T) {
	w := runMiddleware(t, RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesBlocksDriver(t *testing.T) {
	w := runMiddleware(t, RequireRoles(models.RoleAdmin), &models.JWTClaims{UserID: "driver-1", Role: models.RoleDriver})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesBlocksAnonymous(t *testing.T) {
	w := runMiddleware(t, RequireRoles(models.RoleAdmin), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCompanyBlocksUnscopedAdmin(t *testing.T) {
	w := runMiddleware(t, RequireCompany(), &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCompanyAllowsSuperadmin(t *testing.T) {
	w := runMiddleware(t, RequireCompany(), &models.JWTClaims{UserID: "root-1", Role: models.RoleSuperAdmin})
	assert.Equal(t, http.StatusOK, w.Code)
}
