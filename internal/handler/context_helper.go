package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fleetpass/fleet-compliance-api/internal/middleware"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func companyFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.CompanyID == nil {
		return ""
	}
	return *claims.CompanyID
}
