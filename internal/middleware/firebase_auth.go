package middleware

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// TokenVerifier is the part of the Firebase auth client the middleware needs.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens and resolves the local account linked to the
// Firebase UID. Handlers see the same claims as with JWTAuthMiddleware.
func FirebaseAuthMiddleware(verifier TokenVerifier, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			user, err := users.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "No account linked to this Firebase user")
				}
				logging.FromContext(ctx).Error("resolve firebase user", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
			}

			SetUser(c, &models.JwtCustomClaims{UserID: user.ID, Email: user.Email})
			return next(c)
		}
	}
}
