package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"support-desk/internal/common/logger"
	"support-desk/internal/models"

	"github.com/google/uuid"
)

// PostgresStore stores submissions in the support_requests table
// (migrations/001_support_requests.sql).
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
	}
}

func (s *PostgresStore) Create(ctx context.Context, sub *models.Submission) (string, error) {
	id := uuid.New().String()
	createdAt := time.Now().UTC()

	browserJSON, err := json.Marshal(sub.Browser)
	if err != nil {
		return "", fmt.Errorf("failed to marshal browser metadata: %w", err)
	}
	locationJSON, err := json.Marshal(sub.Location)
	if err != nil {
		return "", fmt.Errorf("failed to marshal location metadata: %w", err)
	}

	var attachmentJSON []byte
	if sub.Attachment != nil {
		attachmentJSON, err = json.Marshal(sub.Attachment)
		if err != nil {
			return "", fmt.Errorf("failed to marshal attachment: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO support_requests (
			id, first_name, last_name, email, store_url, store_password,
			theme, subject, message, attachment, attachment_path,
			browser, location, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id,
		sub.FirstName,
		sub.LastName,
		sub.Email,
		sub.StoreURL,
		sub.StorePassword,
		sub.Theme,
		sub.Subject,
		sub.Message,
		nullableJSON(attachmentJSON),
		sub.AttachmentPath,
		browserJSON,
		locationJSON,
		createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert failed: %w", err)
	}

	sub.ID = id
	sub.CreatedAt = createdAt

	return id, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM support_requests WHERE id = $1`, id)

	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select failed: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]*models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM support_requests
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select failed: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AttachFailureRecord(ctx context.Context, id string, payload json.RawMessage) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE support_requests SET forward_error = $2 WHERE id = $1`,
		id, []byte(payload),
	)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `
	SELECT id, first_name, last_name, email, store_url, store_password,
	       theme, subject, message, attachment, attachment_path,
	       browser, location, forward_error, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub            models.Submission
		attachmentJSON []byte
		browserJSON    []byte
		locationJSON   []byte
		forwardJSON    []byte
	)

	err := row.Scan(
		&sub.ID,
		&sub.FirstName,
		&sub.LastName,
		&sub.Email,
		&sub.StoreURL,
		&sub.StorePassword,
		&sub.Theme,
		&sub.Subject,
		&sub.Message,
		&attachmentJSON,
		&sub.AttachmentPath,
		&browserJSON,
		&locationJSON,
		&forwardJSON,
		&sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(attachmentJSON) > 0 {
		var att models.Attachment
		if err := json.Unmarshal(attachmentJSON, &att); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachment: %w", err)
		}
		sub.Attachment = &att
	}

	sub.Browser = map[string]string{}
	if len(browserJSON) > 0 {
		if err := json.Unmarshal(browserJSON, &sub.Browser); err != nil {
			return nil, fmt.Errorf("failed to unmarshal browser metadata: %w", err)
		}
	}

	sub.Location = map[string]string{}
	if len(locationJSON) > 0 {
		if err := json.Unmarshal(locationJSON, &sub.Location); err != nil {
			return nil, fmt.Errorf("failed to unmarshal location metadata: %w", err)
		}
	}

	if len(forwardJSON) > 0 {
		sub.ForwardError = json.RawMessage(forwardJSON)
	}

	return &sub, nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
