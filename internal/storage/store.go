// Package storage persists support submissions.
package storage

import (
	"context"
	"encoding/json"
	"errors"

	"support-desk/internal/models"
)

var (
	// ErrNotFound is returned when no submission exists for an id.
	ErrNotFound = errors.New("support request not found")
)

// SubmissionStore persists submissions and retrieves them by identifier.
// Create assigns the identifier. AttachFailureRecord is the only mutation
// allowed on a persisted record; concurrent calls for the same id are
// serialized by the implementation, last write wins.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) (string, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, limit int) ([]*models.Submission, error)
	AttachFailureRecord(ctx context.Context, id string, payload json.RawMessage) error
}
