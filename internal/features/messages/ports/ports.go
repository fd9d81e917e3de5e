package ports

import (
	"context"

	"storefront/internal/features/messages/domain"
)

// MessageService defines the primary port for contact messages.
type MessageService interface {
	SendMessage(ctx context.Context, name, email, subject, body string) (*domain.Message, error)
	// ListMessages returns messages newest first. A nil read lists all of them.
	ListMessages(ctx context.Context, read *bool) ([]domain.Message, error)
	SetRead(ctx context.Context, id string, read bool) (*domain.Message, error)
}

// MessageRepository defines the secondary port for message storage.
type MessageRepository interface {
	Save(ctx context.Context, message *domain.Message) (string, error)
	Get(ctx context.Context, id string) (*domain.Message, error)
	List(ctx context.Context) ([]domain.Message, error)
	ListByRead(ctx context.Context, read bool) ([]domain.Message, error)
	SetRead(ctx context.Context, id string, read bool) error
}
