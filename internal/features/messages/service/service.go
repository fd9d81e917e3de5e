package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/logger"
	"storefront/internal/features/messages/domain"
	"storefront/internal/features/messages/ports"

	"go.uber.org/zap"
)

// MessageServiceImpl implements ports.MessageService.
type MessageServiceImpl struct {
	repo ports.MessageRepository
	now  func() time.Time
}

// NewMessageService creates a new MessageServiceImpl.
func NewMessageService(repo ports.MessageRepository) *MessageServiceImpl {
	return &MessageServiceImpl{
		repo: repo,
		now:  time.Now,
	}
}

// SendMessage validates and stores a contact form submission.
func (s *MessageServiceImpl) SendMessage(ctx context.Context, name, email, subject, body string) (*domain.Message, error) {
	message, err := domain.NewMessage(name, email, subject, body, s.now().UTC())
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Save(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("%w: service: failed to save message: %v", apperror.ErrStore, err)
	}
	message.ID = id

	logger.Get().Info("Contact message received", zap.String("message_id", id), zap.String("subject", message.Subject))
	return message, nil
}

// ListMessages returns messages newest first, optionally filtered by read flag.
func (s *MessageServiceImpl) ListMessages(ctx context.Context, read *bool) ([]domain.Message, error) {
	var (
		messages []domain.Message
		err      error
	)
	if read == nil {
		messages, err = s.repo.List(ctx)
	} else {
		messages, err = s.repo.ListByRead(ctx, *read)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: service: failed to list messages: %v", apperror.ErrStore, err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].SentAt.After(messages[j].SentAt)
	})
	return messages, nil
}

// SetRead marks a message as read or unread.
func (s *MessageServiceImpl) SetRead(ctx context.Context, id string, read bool) (*domain.Message, error) {
	if err := s.repo.SetRead(ctx, id, read); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: service: failed to update message: %v", apperror.ErrStore, err)
	}

	message, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: service: failed to reload message: %v", apperror.ErrStore, err)
	}
	return message, nil
}
