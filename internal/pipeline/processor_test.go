package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	stderrors "support-desk/internal/common/errors"
	"support-desk/internal/common/logger"
	"support-desk/internal/common/observability"
	"support-desk/internal/enrichment"
	"support-desk/internal/models"
	"support-desk/internal/storage"
	"support-desk/internal/support"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, store storage.SubmissionStore, forward ForwardFunc) *Processor {
	log := logger.NewTestLogger(t)
	enricher := enrichment.New(nil, "", false, log)
	if forward == nil {
		forward = func(context.Context, *models.Submission) error { return nil }
	}
	return New(enricher, store, forward, &observability.Observability{}, 5*time.Second, log)
}

func validForm() *support.RawForm {
	return &support.RawForm{
		Fields: map[string]string{
			"email":   "jane@example.com",
			"subject": "Broken cart",
			"message": "The cart page 500s.",
		},
	}
}

func TestProcess_AcceptsAndForwards(t *testing.T) {
	store := storage.NewMemoryStore()
	forwarded := make(chan *models.Submission, 1)
	cleaned := make(chan struct{}, 1)

	proc := newTestProcessor(t, store, func(_ context.Context, sub *models.Submission) error {
		forwarded <- sub
		return nil
	})

	sub, fieldErrs, err := proc.Process(context.Background(), validForm(), enrichment.RequestContext{}, func() {
		cleaned <- struct{}{}
	})
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.NotEmpty(t, sub.ID)

	stored, err := store.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored.Email)

	select {
	case got := <-forwarded:
		assert.Equal(t, sub.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("forward was not invoked")
	}

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not run after forward")
	}
}

func TestProcess_RejectsInvalidForm(t *testing.T) {
	store := storage.NewMemoryStore()
	forwardCalled := false
	cleaned := false

	proc := newTestProcessor(t, store, func(context.Context, *models.Submission) error {
		forwardCalled = true
		return nil
	})

	form := &support.RawForm{Fields: map[string]string{"email": "not-an-email"}}
	sub, fieldErrs, err := proc.Process(context.Background(), form, enrichment.RequestContext{}, func() { cleaned = true })

	require.NoError(t, err)
	assert.Nil(t, sub)
	require.NotEmpty(t, fieldErrs)
	assert.False(t, forwardCalled)
	assert.True(t, cleaned)

	subs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

type failingStore struct {
	storage.SubmissionStore
}

func (failingStore) Create(context.Context, *models.Submission) (string, error) {
	return "", assert.AnError
}

func TestProcess_StoreFailure(t *testing.T) {
	cleaned := false
	proc := newTestProcessor(t, failingStore{}, nil)

	_, fieldErrs, err := proc.Process(context.Background(), validForm(), enrichment.RequestContext{}, func() { cleaned = true })
	require.Error(t, err)
	assert.Empty(t, fieldErrs)
	assert.True(t, cleaned)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodePersistenceError, stdErr.Code)
}

func TestProcess_ForwardPanicRecovered(t *testing.T) {
	store := storage.NewMemoryStore()
	cleaned := make(chan struct{}, 1)

	proc := newTestProcessor(t, store, func(context.Context, *models.Submission) error {
		panic("boom")
	})

	_, fieldErrs, err := proc.Process(context.Background(), validForm(), enrichment.RequestContext{}, func() {
		cleaned <- struct{}{}
	})
	require.NoError(t, err)
	require.Empty(t, fieldErrs)

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not run after panicking forward")
	}
}

func TestProcess_ReturnedSubmissionIsolatedFromForwarder(t *testing.T) {
	store := storage.NewMemoryStore()
	done := make(chan struct{})

	proc := newTestProcessor(t, store, func(_ context.Context, sub *models.Submission) error {
		sub.ForwardError = json.RawMessage(`{"error":"x"}`)
		close(done)
		return nil
	})

	sub, _, err := proc.Process(context.Background(), validForm(), enrichment.RequestContext{}, nil)
	require.NoError(t, err)

	<-done
	assert.Nil(t, sub.ForwardError)
}

func TestGet_NotFound(t *testing.T) {
	proc := newTestProcessor(t, storage.NewMemoryStore(), nil)

	_, err := proc.Get(context.Background(), "missing")
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeNotFound, stdErr.Code)
}

func TestList_NewestFirst(t *testing.T) {
	store := storage.NewMemoryStore()
	proc := newTestProcessor(t, store, nil)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		form := validForm()
		form.Fields["email"] = email
		_, fieldErrs, err := proc.Process(context.Background(), form, enrichment.RequestContext{}, nil)
		require.NoError(t, err)
		require.Empty(t, fieldErrs)
	}

	subs, err := proc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "b@example.com", subs[0].Email)
	assert.Equal(t, "a@example.com", subs[1].Email)
}
