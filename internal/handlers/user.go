package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const searchLimit = 20

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile/me", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/profile/:userId", h.GetUser)
	g.GET("/users/search", h.SearchUsers)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := parseIDParam(c, "userId", "User not found")
	if err != nil {
		return err
	}
	return h.respondWithUser(c, userID)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	return h.respondWithUser(c, currentUserID)
}

func (h *UserHandler) respondWithUser(c echo.Context, userID uint) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// UpdateProfile applies the non-empty fields of the request. An explicit empty bio clears it.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return handleServiceError(c, err)
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.ProfilePicture != "" {
		user.ProfilePicture = req.ProfilePicture
	}
	if req.CoverPhoto != "" {
		user.CoverPhoto = req.CoverPhoto
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// SearchUsers searches for users by a query string (email or name)
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query, searchLimit)
	if err != nil {
		return handleServiceError(c, err)
	}

	results := make([]models.UserCompact, len(users))
	for i := range users {
		results[i] = users[i].ToCompact()
	}
	return c.JSON(http.StatusOK, echo.Map{"users": results})
}
