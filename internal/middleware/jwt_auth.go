package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// userContextKey is where the verified claims live on the echo context.
const userContextKey = "user"

var (
	errUnexpectedSigningMethod = errors.New("unexpected signing method")
	errMissingSubject          = errors.New("token carries no user id")
)

// JWTAuthMiddleware checks for a valid JWT and stores the claims on the context.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := ParseToken(secret, tokenString)
			if err != nil {
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			SetUser(c, claims)
			return next(c)
		}
	}
}

// IssueToken signs an HS256 token for user that expires after ttl.
func IssueToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies tokenString and returns its claims.
func ParseToken(secret, tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errMissingSubject
	}
	return claims, nil
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}

// QueryToken lifts a token query parameter into the Authorization header and drops it from the
// URL. Browsers cannot set headers on a websocket handshake, so only the websocket route uses it,
// in front of the auth middleware.
func QueryToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			query := req.URL.Query()
			token := query.Get("token")
			if token == "" {
				return next(c)
			}
			if req.Header.Get(echo.HeaderAuthorization) == "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
			}
			query.Del("token")
			req.URL.RawQuery = query.Encode()
			return next(c)
		}
	}
}

// SetUser stores verified claims on the context.
func SetUser(c echo.Context, claims *models.JwtCustomClaims) {
	c.Set(userContextKey, claims)
}

// UserIDFromContext returns the id of the authenticated user, if any.
func UserIDFromContext(c echo.Context) (uint, bool) {
	claims, ok := c.Get(userContextKey).(*models.JwtCustomClaims)
	if !ok || claims == nil || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}
