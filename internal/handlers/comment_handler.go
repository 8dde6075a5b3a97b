package handlers

import (
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	posts *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(posts *services.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:postId/comment", h.CreateComment)
	g.GET("/posts/:postId/comments", h.GetComments)
	g.DELETE("/posts/:postId/comment/:commentId", h.DeleteComment)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.posts.AddComment(c.Request().Context(), c.Param("postId"), currentUserID, req.Text)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// GetComments lists the comments of a post in the order they were written
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.posts.Comments(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	err = h.posts.DeleteComment(c.Request().Context(), c.Param("postId"), c.Param("commentId"), currentUserID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
}
