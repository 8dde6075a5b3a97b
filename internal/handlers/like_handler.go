package handlers

import (
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggles on posts
type LikeHandler struct {
	posts *services.PostService
}

func NewLikeHandler(posts *services.PostService) *LikeHandler {
	return &LikeHandler{posts: posts}
}

func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:postId/like", h.ToggleLike)
}

// ToggleLike likes the post, or unlikes it when the caller already did.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.posts.ToggleLike(c.Request().Context(), c.Param("postId"), currentUserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	message := "Post unliked"
	if result.IsLiked {
		message = "Post liked"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": message,
		"likes":   result.Likes,
		"isLiked": result.IsLiked,
	})
}
