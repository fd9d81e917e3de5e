package adapters

import (
	"context"
	"testing"
	"time"

	"storefront/internal/core/docstore"
	"storefront/internal/features/messages/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocstoreMessageRepository(t *testing.T) {
	repo := NewDocstoreMessageRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	m, err := domain.NewMessage("Ana", "ana@example.com", "Trocas", "Oi", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	id, err := repo.Save(ctx, m)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Trocas", got.Subject)
	assert.False(t, got.Read)

	unread, err := repo.ListByRead(ctx, false)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	require.NoError(t, repo.SetRead(ctx, id, true))

	unread, err = repo.ListByRead(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, unread)

	read, err := repo.ListByRead(ctx, true)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.True(t, read[0].Read)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDocstoreMessageRepository_NotFound(t *testing.T) {
	repo := NewDocstoreMessageRepository(docstore.NewMemoryStore())

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	err = repo.SetRead(context.Background(), "missing", true)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
}
