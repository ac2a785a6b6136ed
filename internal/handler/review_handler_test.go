package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpass/fleet-compliance-api/internal/middleware"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

func adminContext(w *httptest.ResponseRecorder, method, target string, body []byte) (*gin.Context, *models.JWTClaims) {
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	companyID := "company-1"
	claims := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, CompanyID: &companyID}
	c.Set(middleware.ContextUserKey, claims)
	return c, claims
}

func TestReviewHandlerQueueRejectsUnknownTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReviewHandler(nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, http.MethodGet, "/admin/review/queue?table=payroll", nil)

	handler.Queue(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown credential table")
}

func TestReviewHandlerQueueRequiresCompanyScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReviewHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin/review/queue", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Queue(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReviewHandlerRejectRequiresReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReviewHandler(nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, http.MethodPost, "/admin/review/cred-1/reject", []byte(`{}`))
	c.Params = gin.Params{{Key: "id", Value: "cred-1"}}

	handler.Reject(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminScopePinsAdminsToClaimsCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, http.MethodPost, "/admin/review/cred-1/approve?company_id=company-9", nil)

	companyID, claims, ok := adminScope(c)
	require.True(t, ok)
	assert.Equal(t, "company-1", companyID)
	assert.Equal(t, "admin-1", claims.UserID)
}

func TestAdminScopeSuperadminPlatformWide(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin/review/cred-1/approve", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "root-1", Role: models.RoleSuperAdmin})

	companyID, _, ok := adminScope(c)
	require.True(t, ok)
	assert.Empty(t, companyID)
}

func TestReviewScopeSuperadminUsesQueryCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin/review/queue?company_id=company-9", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "root-1", Role: models.RoleSuperAdmin})

	companyID, ok := reviewScope(c)
	require.True(t, ok)
	assert.Equal(t, "company-9", companyID)
}
