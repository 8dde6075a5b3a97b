package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/middleware"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   middleware.TokenVerifier
	jwtSecret      string
	tokenTTL       time.Duration
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, which disables firebase-login.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth middleware.TokenVerifier, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      string(hashedPassword),
		BirthdayDay:   req.BirthdayDay,
		BirthdayMonth: req.BirthdayMonth,
		BirthdayYear:  req.BirthdayYear,
		Sex:           req.Sex,
	}

	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		}
		return handleServiceError(c, err)
	}

	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		return handleServiceError(c, err)
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT, linking or creating the
// local account on first use.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "Firebase login is not configured")
	}

	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email address")
	}
	firstName, lastName := splitDisplayName(token.Claims["name"])
	picture, _ := token.Claims["picture"].(string)
	uid := token.UID

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			// existing local account, link it
			user.FirebaseUID = &uid
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return handleServiceError(c, err)
			}
		case errors.Is(err, repositories.ErrNotFound):
			user = &models.User{
				FirstName:      firstName,
				LastName:       lastName,
				Email:          email,
				ProfilePicture: picture,
				FirebaseUID:    &uid,
			}
			if err := h.userRepository.CreateUser(ctx, user); err != nil {
				return handleServiceError(c, err)
			}
			logging.FromContext(ctx).Info("account created from firebase login", "user_id", user.ID)
		default:
			return handleServiceError(c, err)
		}
	default:
		return handleServiceError(c, err)
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, err := middleware.IssueToken(h.jwtSecret, user, h.tokenTTL)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(status, echo.Map{
		"token": token,
		"user":  user,
	})
}

func splitDisplayName(claim interface{}) (string, string) {
	name, _ := claim.(string)
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "Firebase", "User"
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
