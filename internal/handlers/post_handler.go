package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// maxImageBytes bounds a single post image upload.
const maxImageBytes = 10 << 20

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts/create", h.CreatePost)
	g.GET("/posts/user/:userId", h.GetUserPosts)
	g.DELETE("/posts/:postId", h.DeletePost)
}

// CreatePost accepts JSON or a multipart form with an optional "image" file.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var image *services.ImageUpload
	fileHeader, err := c.FormFile("image")
	switch {
	case err == nil:
		if fileHeader.Size > maxImageBytes {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Image must be at most %d MB", maxImageBytes>>20))
		}
		file, err := fileHeader.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid image upload")
		}
		defer file.Close()
		image = &services.ImageUpload{Filename: fileHeader.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid image upload")
	}

	post, err := h.posts.CreatePost(c.Request().Context(), currentUserID, req.Content, image)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (h *PostHandler) GetUserPosts(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	authorID, err := parseIDParam(c, "userId", "User not found")
	if err != nil {
		return err
	}

	posts, err := h.posts.PostsByUser(c.Request().Context(), currentUserID, authorID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(c.Request().Context(), c.Param("postId"), currentUserID); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}
