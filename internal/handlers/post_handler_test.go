package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/socialnet/backend/internal/mocks"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postHandlerFixture struct {
	posts    *mocks.MockPostRepository
	users    *mocks.MockUserRepository
	media    *mocks.MockMediaStore
	notifier *mocks.MockNotifier
	server   *echo.Echo
}

func newPostHandlerFixture() *postHandlerFixture {
	f := &postHandlerFixture{
		posts:    new(mocks.MockPostRepository),
		users:    new(mocks.MockUserRepository),
		media:    new(mocks.MockMediaStore),
		notifier: new(mocks.MockNotifier),
	}
	service := services.NewPostService(f.posts, f.users, f.media, f.notifier, nil)
	f.server = newTestServer(func(g *echo.Group) {
		NewFeedHandler(service).RegisterFeedRoutes(g)
		NewPostHandler(service).RegisterPostRoutes(g)
		NewLikeHandler(service).RegisterLikeRoutes(g)
		NewCommentHandler(service).RegisterCommentRoutes(g)
	})
	return f
}

func TestCreatePostHandler(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		f := newPostHandlerFixture()
		f.posts.On("CreatePost", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
			return p.Content == "hello world" && p.AuthorID == 1 && p.Image == ""
		})).Return(nil)
		f.users.On("GetUsersByIDs", mock.Anything, []uint{1}).Return([]models.User{{ID: 1, FirstName: "Ada"}}, nil)

		rec := doJSON(f.server, http.MethodPost, "/api/posts/create", 1, map[string]string{"content": "  hello world "})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Equal(t, "Post created successfully", body["message"])
		post := body["post"].(map[string]any)
		assert.Equal(t, "hello world", post["content"])
		assert.Equal(t, "Ada", post["author"].(map[string]any)["firstname"])
		f.media.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("multipart with image", func(t *testing.T) {
		f := newPostHandlerFixture()
		f.media.On("Save", mock.Anything, mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "posts/") && strings.HasSuffix(name, ".jpg")
		}), mock.Anything).Return("/uploads/posts/abc.jpg", nil)
		f.posts.On("CreatePost", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
			return p.Image == "/uploads/posts/abc.jpg"
		})).Return(nil)
		f.users.On("GetUsersByIDs", mock.Anything, []uint{1}).Return([]models.User{{ID: 1}}, nil)

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("content", "with a picture"))
		part, err := writer.CreateFormFile("image", "holiday.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg bytes"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/posts/create", &buf)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		req.Header.Set(testUserHeader, "1")
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "/uploads/posts/abc.jpg", decodeBody(t, rec)["post"].(map[string]any)["image"])
		f.media.AssertExpectations(t)
	})

	t.Run("blank content", func(t *testing.T) {
		f := newPostHandlerFixture()

		rec := doJSON(f.server, http.MethodPost, "/api/posts/create", 1, map[string]string{"content": "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Post content is required", decodeBody(t, rec)["message"])
	})

	t.Run("content too long", func(t *testing.T) {
		f := newPostHandlerFixture()

		rec := doJSON(f.server, http.MethodPost, "/api/posts/create", 1, map[string]string{"content": strings.Repeat("x", 5001)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
	})
}

func TestFeedHandler(t *testing.T) {
	f := newPostHandlerFixture()
	liked := models.Post{ID: primitive.NewObjectID(), AuthorID: 2, Content: "liked", Likes: []uint{1, 3}}
	other := models.Post{ID: primitive.NewObjectID(), AuthorID: 3, Content: "other"}
	f.posts.On("GetAllPosts", mock.Anything, int64(0), int64(services.FeedLimit)).Return([]models.Post{liked, other}, nil)
	f.users.On("GetUsersByIDs", mock.Anything, mock.Anything).Return([]models.User{{ID: 2}, {ID: 3}}, nil)

	rec := doJSON(f.server, http.MethodGet, "/api/posts/feed", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decodeBody(t, rec)["posts"].([]any)
	require.Len(t, posts, 2)
	assert.Equal(t, true, posts[0].(map[string]any)["isLiked"])
	assert.EqualValues(t, 2, posts[0].(map[string]any)["likesCount"])
	assert.Equal(t, false, posts[1].(map[string]any)["isLiked"])
}

func TestToggleLikeHandler(t *testing.T) {
	f := newPostHandlerFixture()
	postID := primitive.NewObjectID()
	f.posts.On("ToggleLike", mock.Anything, postID.Hex(), uint(1)).
		Return(&models.Post{ID: postID, AuthorID: 2, Likes: []uint{1}}, true, nil).Once()
	f.posts.On("ToggleLike", mock.Anything, postID.Hex(), uint(1)).
		Return(&models.Post{ID: postID, AuthorID: 2, Likes: []uint{}}, false, nil).Once()
	f.posts.On("ToggleLike", mock.Anything, "missing", uint(1)).Return(nil, false, repositories.ErrNotFound)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return()

	rec := doJSON(f.server, http.MethodPost, "/api/posts/"+postID.Hex()+"/like", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Post liked", body["message"])
	assert.EqualValues(t, 1, body["likes"])

	rec = doJSON(f.server, http.MethodPost, "/api/posts/"+postID.Hex()+"/like", 1, nil)
	body = decodeBody(t, rec)
	assert.Equal(t, "Post unliked", body["message"])
	assert.Equal(t, false, body["isLiked"])

	rec = doJSON(f.server, http.MethodPost, "/api/posts/missing/like", 1, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestCommentHandlers(t *testing.T) {
	postID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()
	post := &models.Post{
		ID:       postID,
		AuthorID: 2,
		Comments: []models.Comment{{ID: commentID, UserID: 3, Text: "first"}},
	}

	t.Run("add", func(t *testing.T) {
		f := newPostHandlerFixture()
		f.posts.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)
		f.posts.On("AddComment", mock.Anything, postID.Hex(), mock.AnythingOfType("*models.Comment")).Return(nil)
		f.notifier.On("Notify", mock.Anything, mock.Anything).Return()
		f.users.On("GetUsersByIDs", mock.Anything, []uint{1}).Return([]models.User{{ID: 1, FirstName: "Ada"}}, nil)

		rec := doJSON(f.server, http.MethodPost, "/api/posts/"+postID.Hex()+"/comment", 1, map[string]string{"text": " nice "})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Equal(t, "Comment added successfully", body["message"])
		assert.Equal(t, "nice", body["comment"].(map[string]any)["text"])
	})

	t.Run("blank text", func(t *testing.T) {
		f := newPostHandlerFixture()

		rec := doJSON(f.server, http.MethodPost, "/api/posts/"+postID.Hex()+"/comment", 1, map[string]string{"text": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		f := newPostHandlerFixture()
		f.posts.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)
		f.users.On("GetUsersByIDs", mock.Anything, []uint{3}).Return([]models.User{{ID: 3, FirstName: "Linus"}}, nil)

		rec := doJSON(f.server, http.MethodGet, "/api/posts/"+postID.Hex()+"/comments", 1, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		comments := decodeBody(t, rec)["comments"].([]any)
		require.Len(t, comments, 1)
		assert.Equal(t, "Linus", comments[0].(map[string]any)["user"].(map[string]any)["firstname"])
	})

	t.Run("delete by non author", func(t *testing.T) {
		f := newPostHandlerFixture()
		f.posts.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)

		rec := doJSON(f.server, http.MethodDelete, "/api/posts/"+postID.Hex()+"/comment/"+commentID.Hex(), 2, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete by author", func(t *testing.T) {
		f := newPostHandlerFixture()
		f.posts.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)
		f.posts.On("RemoveComment", mock.Anything, postID.Hex(), commentID.Hex(), uint(3)).Return(nil)

		rec := doJSON(f.server, http.MethodDelete, "/api/posts/"+postID.Hex()+"/comment/"+commentID.Hex(), 3, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Comment deleted successfully", decodeBody(t, rec)["message"])
	})
}

func TestDeletePostHandler(t *testing.T) {
	postID := primitive.NewObjectID()
	post := &models.Post{ID: postID, AuthorID: 2}

	t.Run("forbidden", func(t *testing.T) {
		f := newPostHandlerFixture()
		f.posts.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)

		rec := doJSON(f.server, http.MethodDelete, "/api/posts/"+postID.Hex(), 1, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		f.posts.AssertNotCalled(t, "DeletePost", mock.Anything, mock.Anything)
	})

	t.Run("author deletes", func(t *testing.T) {
		f := newPostHandlerFixture()
		f.posts.On("GetPostByID", mock.Anything, postID.Hex()).Return(post, nil)
		f.posts.On("DeletePost", mock.Anything, postID.Hex()).Return(nil)
		f.notifier.On("PurgeForPost", mock.Anything, postID.Hex()).Return()

		rec := doJSON(f.server, http.MethodDelete, "/api/posts/"+postID.Hex(), 2, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Post deleted successfully", decodeBody(t, rec)["message"])
		f.notifier.AssertExpectations(t)
	})
}
