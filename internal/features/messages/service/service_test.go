package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/docstore"
	"storefront/internal/features/messages/adapters"
	"storefront/internal/features/messages/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMessageRepository is a mock implementation of ports.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Save(ctx context.Context, message *domain.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func (m *MockMessageRepository) Get(ctx context.Context, id string) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) List(ctx context.Context) ([]domain.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByRead(ctx context.Context, read bool) ([]domain.Message, error) {
	args := m.Called(ctx, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) SetRead(ctx context.Context, id string, read bool) error {
	args := m.Called(ctx, id, read)
	return args.Error(0)
}

func TestMessageService_SendMessage(t *testing.T) {
	mockRepo := new(MockMessageRepository)
	service := NewMessageService(mockRepo)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo.On("Save", ctx, mock.AnythingOfType("*domain.Message")).Return("m1", nil).Once()

		m, err := service.SendMessage(ctx, "Ana", "ana@example.com", "Trocas", "Oi")
		require.NoError(t, err)
		assert.Equal(t, "m1", m.ID)
		assert.False(t, m.SentAt.IsZero())
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		_, err := service.SendMessage(ctx, "Ana", "not-an-email", "Trocas", "Oi")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo.On("Save", ctx, mock.AnythingOfType("*domain.Message")).Return("", errors.New("db error")).Once()

		_, err := service.SendMessage(ctx, "Ana", "ana@example.com", "Trocas", "Oi")
		assert.ErrorIs(t, err, apperror.ErrStore)
		mockRepo.AssertExpectations(t)
	})
}

func TestMessageService_ListAndSetRead(t *testing.T) {
	service := NewMessageService(adapters.NewDocstoreMessageRepository(docstore.NewMemoryStore()))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, subject := range []string{"Primeira", "Segunda", "Terceira"} {
		at := base.Add(time.Duration(i) * time.Minute)
		service.now = func() time.Time { return at }
		m, err := service.SendMessage(ctx, "Ana", "ana@example.com", subject, "Oi")
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	all, err := service.ListMessages(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Terceira", all[0].Subject)
	assert.Equal(t, "Primeira", all[2].Subject)

	updated, err := service.SetRead(ctx, ids[1], true)
	require.NoError(t, err)
	assert.True(t, updated.Read)

	read := true
	onlyRead, err := service.ListMessages(ctx, &read)
	require.NoError(t, err)
	require.Len(t, onlyRead, 1)
	assert.Equal(t, "Segunda", onlyRead[0].Subject)

	unread := false
	onlyUnread, err := service.ListMessages(ctx, &unread)
	require.NoError(t, err)
	assert.Len(t, onlyUnread, 2)

	updated, err = service.SetRead(ctx, ids[1], false)
	require.NoError(t, err)
	assert.False(t, updated.Read)

	_, err = service.SetRead(ctx, "missing", true)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
