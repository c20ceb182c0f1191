package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/platewise/backend/internal/models"
)

// getUserClaims extracts the JWT claims stored by the auth middleware.
func getUserClaims(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// getUserIDFromContext returns the authenticated user's id, or 0 when the
// request carries no valid claims.
func getUserIDFromContext(c echo.Context) uint {
	claims := getUserClaims(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
