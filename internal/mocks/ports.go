package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/anonto42/socialnet/backend/internal/events"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/realtime"
	"github.com/stretchr/testify/mock"
)

// MockNotifier mocks services.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n *models.Notification) {
	m.Called(ctx, n)
}

func (m *MockNotifier) PurgeForPost(ctx context.Context, postID string) {
	m.Called(ctx, postID)
}

func (m *MockNotifier) PurgeForFriendship(ctx context.Context, friendshipID uint) {
	m.Called(ctx, friendshipID)
}

// MockMediaStore mocks storage.MediaStore.
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStore) Delete(ctx context.Context, location string) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

// MockPublisher mocks events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// RecordingPusher captures realtime pushes.
type RecordingPusher struct {
	mu       sync.Mutex
	Messages map[uint][]*realtime.Message
}

func NewRecordingPusher() *RecordingPusher {
	return &RecordingPusher{Messages: make(map[uint][]*realtime.Message)}
}

func (p *RecordingPusher) SendToUser(userID uint, msg *realtime.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages[userID] = append(p.Messages[userID], msg)
}

func (p *RecordingPusher) Count(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Messages[userID])
}
