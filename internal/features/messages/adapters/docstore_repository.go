package adapters

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/core/docstore"
	"storefront/internal/features/messages/domain"
)

// MessagesCollection is the collection holding contact messages.
const MessagesCollection = "mensagens-site"

// DocstoreMessageRepository implements ports.MessageRepository on a docstore collection.
type DocstoreMessageRepository struct {
	coll docstore.Collection
}

// NewDocstoreMessageRepository creates a new DocstoreMessageRepository.
func NewDocstoreMessageRepository(store docstore.Store) *DocstoreMessageRepository {
	return &DocstoreMessageRepository{
		coll: store.Collection(MessagesCollection),
	}
}

// Save stores the message and returns its id.
func (r *DocstoreMessageRepository) Save(ctx context.Context, message *domain.Message) (string, error) {
	doc, err := docstore.Encode(message)
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	id, err := r.coll.Create(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to save message: %w", err)
	}
	return id, nil
}

// Get retrieves one message.
func (r *DocstoreMessageRepository) Get(ctx context.Context, id string) (*domain.Message, error) {
	doc, err := r.coll.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMessageNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	var m domain.Message
	if err := docstore.Decode(doc, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List retrieves every message.
func (r *DocstoreMessageRepository) List(ctx context.Context) ([]domain.Message, error) {
	docs, err := r.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return decodeMessages(docs)
}

// ListByRead retrieves the messages with the given read flag.
func (r *DocstoreMessageRepository) ListByRead(ctx context.Context, read bool) ([]domain.Message, error) {
	docs, err := r.coll.FindByField(ctx, "read", read)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return decodeMessages(docs)
}

// SetRead updates the read flag.
func (r *DocstoreMessageRepository) SetRead(ctx context.Context, id string, read bool) error {
	err := r.coll.Update(ctx, id, docstore.Document{"read": read})
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrMessageNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

func decodeMessages(docs []docstore.Document) ([]domain.Message, error) {
	messages := make([]domain.Message, 0, len(docs))
	for _, doc := range docs {
		var m domain.Message
		if err := docstore.Decode(doc, &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}
