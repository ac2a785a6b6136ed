package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fleetpass/fleet-compliance-api/internal/middleware"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

func TestClaimsFromContextAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, claimsFromContext(c))
}

func TestClaimsFromContextWrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(middleware.ContextUserKey, "not claims")

	assert.Nil(t, claimsFromContext(c))
}

func TestCompanyFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	companyID := "company-1"
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", CompanyID: &companyID})

	assert.Equal(t, "company-1", companyFromContext(c))
}

func TestCompanyFromContextNoCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "root-1", Role: models.RoleSuperAdmin})

	assert.Equal(t, "", companyFromContext(c))
}
