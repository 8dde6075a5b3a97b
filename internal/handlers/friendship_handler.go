package handlers

import (
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendships *services.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendships *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/request/:userId", h.SendFriendRequest)
	g.PUT("/friends/accept/:friendshipId", h.AcceptFriendRequest)
	g.PUT("/friends/reject/:friendshipId", h.RejectFriendRequest)
	g.DELETE("/friends/unfriend/:userId", h.Unfriend)
	g.GET("/friends/list", h.GetFriends)
	g.GET("/friends/requests/received", h.GetReceivedRequests)
	g.GET("/friends/requests/sent", h.GetSentRequests)
	g.GET("/friends/status/:userId", h.GetFriendshipStatus)
	g.GET("/friends/suggestions", h.GetSuggestions)
	g.GET("/friends/count/:userId", h.GetFriendCount)
}

func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	recipientID, err := parseIDParam(c, "userId", "User not found")
	if err != nil {
		return err
	}

	friendship, err := h.friendships.SendRequest(c.Request().Context(), currentUserID, recipientID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Friend request sent",
		"friendship": friendship,
	})
}

func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	friendshipID, err := parseIDParam(c, "friendshipId", "Friend request not found")
	if err != nil {
		return err
	}

	friendship, err := h.friendships.Accept(c.Request().Context(), friendshipID, currentUserID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Friend request accepted",
		"friendship": friendship,
	})
}

func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	friendshipID, err := parseIDParam(c, "friendshipId", "Friend request not found")
	if err != nil {
		return err
	}

	if _, err := h.friendships.Reject(c.Request().Context(), friendshipID, currentUserID); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend request rejected"})
}

// Unfriend removes the accepted friendship between the caller and :userId.
func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	otherID, err := parseIDParam(c, "userId", "Friendship not found")
	if err != nil {
		return err
	}

	if err := h.friendships.Unfriend(c.Request().Context(), currentUserID, otherID); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Unfriended successfully"})
}

func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	friends, err := h.friendships.ListFriends(c.Request().Context(), currentUserID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"friends": friends})
}

func (h *FriendshipHandler) GetReceivedRequests(c echo.Context) error {
	return h.listRequests(c, models.DirectionReceived)
}

func (h *FriendshipHandler) GetSentRequests(c echo.Context) error {
	return h.listRequests(c, models.DirectionSent)
}

func (h *FriendshipHandler) listRequests(c echo.Context, direction models.RequestDirection) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	requests, err := h.friendships.ListRequests(c.Request().Context(), currentUserID, direction)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": requests})
}

func (h *FriendshipHandler) GetFriendshipStatus(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	otherID, err := parseIDParam(c, "userId", "User not found")
	if err != nil {
		return err
	}

	status, err := h.friendships.Status(c.Request().Context(), currentUserID, otherID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *FriendshipHandler) GetSuggestions(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	suggestions, err := h.friendships.Suggestions(c.Request().Context(), currentUserID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"suggestions": suggestions})
}

func (h *FriendshipHandler) GetFriendCount(c echo.Context) error {
	userID, err := parseIDParam(c, "userId", "User not found")
	if err != nil {
		return err
	}

	count, err := h.friendships.FriendCount(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}
