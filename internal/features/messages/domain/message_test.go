package domain

import (
	"strings"
	"testing"
	"time"

	"storefront/internal/core/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	sentAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   [4]string
		wantErr bool
	}{
		{name: "Valid", input: [4]string{"Ana", "ana@example.com", "Trocas", "Posso trocar o tamanho?"}},
		{name: "Trimmed", input: [4]string{"  Ana ", " ana@example.com ", " Trocas ", " Oi "}},
		{name: "MissingName", input: [4]string{" ", "ana@example.com", "Trocas", "Oi"}, wantErr: true},
		{name: "MissingEmail", input: [4]string{"Ana", "", "Trocas", "Oi"}, wantErr: true},
		{name: "InvalidEmail", input: [4]string{"Ana", "ana@example", "Trocas", "Oi"}, wantErr: true},
		{name: "EmailWithSpace", input: [4]string{"Ana", "a na@example.com", "Trocas", "Oi"}, wantErr: true},
		{name: "MissingSubject", input: [4]string{"Ana", "ana@example.com", "", "Oi"}, wantErr: true},
		{name: "MissingBody", input: [4]string{"Ana", "ana@example.com", "Trocas", "\n"}, wantErr: true},
		{name: "BodyTooLong", input: [4]string{"Ana", "ana@example.com", "Trocas", strings.Repeat("a", maxBodyLength+1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMessage(tt.input[0], tt.input[1], tt.input[2], tt.input[3], sentAt)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ana", m.Name)
			assert.Equal(t, "ana@example.com", m.Email)
			assert.Equal(t, sentAt, m.SentAt)
			assert.False(t, m.Read)
		})
	}
}
