package handlers

import (
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts/feed", h.GetFeed)
}

// GetFeed returns the latest posts, each flagged with whether the caller liked it
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	posts, err := h.posts.Feed(c.Request().Context(), currentUserID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}
