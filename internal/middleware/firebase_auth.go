package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/repositories"
)

// FirebaseAuthMiddleware verifies Firebase ID tokens and resolves the
// platform user behind them, so handlers see the same claims shape as the
// JWT path. Used by clients that sign in through Firebase.
func FirebaseAuthMiddleware(authClient *auth.Client, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			token, err := authClient.VerifyIDToken(c.Request().Context(), tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Invalid or expired ID token: %v", err))
			}

			user, err := users.GetUserByFirebaseUID(token.UID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not registered")
			}

			c.Set("firebaseUID", token.UID)
			c.Set("user", &models.JwtCustomClaims{
				UserID: user.ID,
				Email:  user.Email,
				Role:   user.Role,
			})

			return next(c)
		}
	}
}
