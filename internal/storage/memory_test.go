package storage

import (
	"context"
	"encoding/json"
	"testing"

	"support-desk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()

	sub := &models.Submission{Email: "jane@example.com", Subject: "Help", Message: "It broke"}
	id, err := store.Create(context.Background(), sub)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.False(t, got.CreatedAt.IsZero())

	// Returned copies must not alias the stored record.
	got.Subject = "mutated"
	again, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Help", again.Subject)
}

func TestMemoryStore_GetByID_NotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_List_MostRecentFirst(t *testing.T) {
	store := NewMemoryStore()

	first, err := store.Create(context.Background(), &models.Submission{Email: "a@example.com"})
	require.NoError(t, err)
	second, err := store.Create(context.Background(), &models.Submission{Email: "b@example.com"})
	require.NoError(t, err)

	subs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, second, subs[0].ID)
	assert.Equal(t, first, subs[1].ID)

	limited, err := store.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second, limited[0].ID)
}

func TestMemoryStore_AttachFailureRecord(t *testing.T) {
	store := NewMemoryStore()

	id, err := store.Create(context.Background(), &models.Submission{Email: "a@example.com"})
	require.NoError(t, err)

	require.NoError(t, store.AttachFailureRecord(context.Background(), id, json.RawMessage(`{"error":"first"}`)))
	require.NoError(t, store.AttachFailureRecord(context.Background(), id, json.RawMessage(`{"error":"second"}`)))

	got, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"second"}`, string(got.ForwardError))

	err = store.AttachFailureRecord(context.Background(), "missing", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrNotFound)
}
