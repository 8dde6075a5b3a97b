package mocks

import (
	"context"
	"time"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	args := m.Called(ctx, firebaseUID)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) ListUsersExcluding(ctx context.Context, exclude []uint, limit int) ([]models.User, error) {
	args := m.Called(ctx, exclude, limit)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	args := m.Called(ctx, query, limit)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

// MockFriendshipRepository mocks repositories.FriendshipRepository.
type MockFriendshipRepository struct {
	mock.Mock
}

func (m *MockFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	args := m.Called(ctx, friendship)
	return args.Error(0)
}

func (m *MockFriendshipRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	args := m.Called(ctx, id)
	return friendshipArg(args, 0), args.Error(1)
}

func (m *MockFriendshipRepository) FindBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error) {
	args := m.Called(ctx, userA, userB)
	return friendshipArg(args, 0), args.Error(1)
}

func (m *MockFriendshipRepository) Respond(ctx context.Context, id, recipientID uint, status models.FriendshipStatus) (*models.Friendship, error) {
	args := m.Called(ctx, id, recipientID, status)
	return friendshipArg(args, 0), args.Error(1)
}

func (m *MockFriendshipRepository) DeleteAccepted(ctx context.Context, userA, userB uint) (*models.Friendship, error) {
	args := m.Called(ctx, userA, userB)
	return friendshipArg(args, 0), args.Error(1)
}

func (m *MockFriendshipRepository) DeleteRejectedBefore(ctx context.Context, userA, userB uint, before time.Time) (bool, error) {
	args := m.Called(ctx, userA, userB, before)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendshipRepository) ListAccepted(ctx context.Context, userID uint) ([]models.Friendship, error) {
	args := m.Called(ctx, userID)
	return friendshipsArg(args, 0), args.Error(1)
}

func (m *MockFriendshipRepository) ListPending(ctx context.Context, userID uint, direction models.RequestDirection) ([]models.Friendship, error) {
	args := m.Called(ctx, userID, direction)
	return friendshipsArg(args, 0), args.Error(1)
}

func (m *MockFriendshipRepository) CounterpartIDs(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	var ids []uint
	if val := args.Get(0); val != nil {
		ids = val.([]uint)
	}
	return ids, args.Error(1)
}

func (m *MockFriendshipRepository) CountAccepted(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func friendshipArg(args mock.Arguments, i int) *models.Friendship {
	if val := args.Get(i); val != nil {
		return val.(*models.Friendship)
	}
	return nil
}

func friendshipsArg(args mock.Arguments, i int) []models.Friendship {
	if val := args.Get(i); val != nil {
		return val.([]models.Friendship)
	}
	return nil
}

// MockNotificationRepository mocks repositories.NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, recipientID, limit)
	var notifications []models.Notification
	if val := args.Get(0); val != nil {
		notifications = val.([]models.Notification)
	}
	return notifications, args.Error(1)
}

func (m *MockNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uint) error {
	args := m.Called(ctx, notificationID, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, notificationID, recipientID uint) error {
	args := m.Called(ctx, notificationID, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteByFriendship(ctx context.Context, friendshipID uint) (int64, error) {
	args := m.Called(ctx, friendshipID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPostRepository mocks repositories.PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	var post *models.Post
	if val := args.Get(0); val != nil {
		post = val.(*models.Post)
	}
	return post, args.Error(1)
}

func (m *MockPostRepository) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	args := m.Called(ctx, ids)
	return postsArg(args, 0), args.Error(1)
}

func (m *MockPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error) {
	args := m.Called(ctx, authorID, skip, limit)
	return postsArg(args, 0), args.Error(1)
}

func (m *MockPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	args := m.Called(ctx, skip, limit)
	return postsArg(args, 0), args.Error(1)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) ToggleLike(ctx context.Context, postID string, userID uint) (*models.Post, bool, error) {
	args := m.Called(ctx, postID, userID)
	var post *models.Post
	if val := args.Get(0); val != nil {
		post = val.(*models.Post)
	}
	return post, args.Bool(1), args.Error(2)
}

func (m *MockPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	args := m.Called(ctx, postID, comment)
	return args.Error(0)
}

func (m *MockPostRepository) RemoveComment(ctx context.Context, postID, commentID string, userID uint) error {
	args := m.Called(ctx, postID, commentID, userID)
	return args.Error(0)
}

func postsArg(args mock.Arguments, i int) []models.Post {
	if val := args.Get(i); val != nil {
		return val.([]models.Post)
	}
	return nil
}
