package handlers

import (
	"net/http"
	"testing"

	"github.com/anonto42/socialnet/backend/internal/mocks"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type friendshipHandlerFixture struct {
	friendships *mocks.MockFriendshipRepository
	users       *mocks.MockUserRepository
	notifier    *mocks.MockNotifier
	server      *echo.Echo
}

func newFriendshipHandlerFixture() *friendshipHandlerFixture {
	f := &friendshipHandlerFixture{
		friendships: new(mocks.MockFriendshipRepository),
		users:       new(mocks.MockUserRepository),
		notifier:    new(mocks.MockNotifier),
	}
	service := services.NewFriendshipService(f.friendships, f.users, f.notifier, nil, 0)
	f.server = newTestServer(NewFriendshipHandler(service).RegisterFriendshipRoutes)
	return f
}

func TestSendFriendRequestHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFriendshipHandlerFixture()
		f.users.On("GetUserByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil)
		f.friendships.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.notifier.On("Notify", mock.Anything, mock.Anything).Return()

		rec := doJSON(f.server, http.MethodPost, "/api/friends/request/2", 1, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Friend request sent", decodeBody(t, rec)["message"])
	})

	t.Run("to self", func(t *testing.T) {
		f := newFriendshipHandlerFixture()

		rec := doJSON(f.server, http.MethodPost, "/api/friends/request/1", 1, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Cannot send friend request to yourself", decodeBody(t, rec)["message"])
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newFriendshipHandlerFixture()
		f.users.On("GetUserByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil)
		f.friendships.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrConflict)

		rec := doJSON(f.server, http.MethodPost, "/api/friends/request/2", 1, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Friend request already exists", decodeBody(t, rec)["message"])
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newFriendshipHandlerFixture()

		rec := doJSON(f.server, http.MethodPost, "/api/friends/request/abc", 1, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newFriendshipHandlerFixture()

		rec := doJSON(f.server, http.MethodPost, "/api/friends/request/2", 0, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRespondFriendRequestHandler(t *testing.T) {
	t.Run("accept", func(t *testing.T) {
		f := newFriendshipHandlerFixture()
		f.friendships.On("Respond", mock.Anything, uint(5), uint(2), models.FriendshipAccepted).
			Return(&models.Friendship{ID: 5, RequesterID: 1, RecipientID: 2, Status: models.FriendshipAccepted}, nil)
		f.notifier.On("Notify", mock.Anything, mock.Anything).Return()

		rec := doJSON(f.server, http.MethodPut, "/api/friends/accept/5", 2, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Friend request accepted", decodeBody(t, rec)["message"])
	})

	t.Run("reject by someone else", func(t *testing.T) {
		f := newFriendshipHandlerFixture()
		f.friendships.On("Respond", mock.Anything, uint(5), uint(3), models.FriendshipRejected).
			Return(nil, repositories.ErrNotFound)

		rec := doJSON(f.server, http.MethodPut, "/api/friends/reject/5", 3, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Friend request not found", decodeBody(t, rec)["message"])
	})
}

func TestUnfriendHandler(t *testing.T) {
	f := newFriendshipHandlerFixture()
	f.friendships.On("DeleteAccepted", mock.Anything, uint(1), uint(2)).Return(&models.Friendship{ID: 4}, nil)
	f.friendships.On("DeleteAccepted", mock.Anything, uint(1), uint(3)).Return(nil, repositories.ErrNotFound)
	f.notifier.On("PurgeForFriendship", mock.Anything, uint(4)).Return()

	rec := doJSON(f.server, http.MethodDelete, "/api/friends/unfriend/2", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unfriended successfully", decodeBody(t, rec)["message"])

	rec = doJSON(f.server, http.MethodDelete, "/api/friends/unfriend/3", 1, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	f.notifier.AssertNumberOfCalls(t, "PurgeForFriendship", 1)
}

func TestFriendshipStatusHandler(t *testing.T) {
	f := newFriendshipHandlerFixture()
	f.friendships.On("FindBetween", mock.Anything, uint(1), uint(2)).
		Return(&models.Friendship{ID: 8, RequesterID: 2, RecipientID: 1, Status: models.FriendshipPending}, nil)
	f.friendships.On("FindBetween", mock.Anything, uint(1), uint(3)).Return(nil, repositories.ErrNotFound)

	rec := doJSON(f.server, http.MethodGet, "/api/friends/status/2", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, models.RelationshipPendingReceived, body["status"])
	assert.EqualValues(t, 8, body["friendshipId"])

	rec = doJSON(f.server, http.MethodGet, "/api/friends/status/3", 1, nil)
	assert.Equal(t, models.RelationshipNone, decodeBody(t, rec)["status"])
}

func TestFriendListingsHandler(t *testing.T) {
	f := newFriendshipHandlerFixture()
	f.friendships.On("ListAccepted", mock.Anything, uint(1)).
		Return([]models.Friendship{{ID: 1, RequesterID: 1, RecipientID: 2, Status: models.FriendshipAccepted}}, nil)
	f.friendships.On("ListPending", mock.Anything, uint(1), models.DirectionReceived).Return([]models.Friendship{}, nil)
	f.friendships.On("CounterpartIDs", mock.Anything, uint(1)).Return([]uint{2}, nil)
	f.friendships.On("CountAccepted", mock.Anything, uint(2)).Return(int64(3), nil)
	f.users.On("GetUsersByIDs", mock.Anything, []uint{2}).Return([]models.User{{ID: 2, FirstName: "Grace"}}, nil)
	f.users.On("ListUsersExcluding", mock.Anything, []uint{2, 1}, services.SuggestionLimit).
		Return([]models.User{{ID: 5, FirstName: "Ada"}}, nil)

	rec := doJSON(f.server, http.MethodGet, "/api/friends/list", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	friends := decodeBody(t, rec)["friends"].([]any)
	assert.Len(t, friends, 1)
	assert.Equal(t, "Grace", friends[0].(map[string]any)["firstname"])

	rec = doJSON(f.server, http.MethodGet, "/api/friends/requests/received", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["requests"])

	rec = doJSON(f.server, http.MethodGet, "/api/friends/suggestions", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["suggestions"], 1)

	rec = doJSON(f.server, http.MethodGet, "/api/friends/count/2", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decodeBody(t, rec)["count"])
}
