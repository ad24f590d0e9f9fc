package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/etros/scorebook/internal/store"
)

// UploadRepository handles upload record data access.
type UploadRepository struct {
	db *store.Database
}

// NewUploadRepository creates a new upload repository.
func NewUploadRepository(db *store.Database) *UploadRepository {
	return &UploadRepository{db: db}
}

const uploadColumns = `upload_id, file_name, uploaded_by, match_date, opponent,
		status, error_message, match_id, created_at, updated_at`

func scanUpload(row interface{ Scan(...any) error }) (*store.Upload, error) {
	u := &store.Upload{}
	err := row.Scan(
		&u.UploadID, &u.FileName, &u.UploadedBy, &u.MatchDate, &u.Opponent,
		&u.Status, &u.ErrorMessage, &u.MatchID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new upload record. Each game may only be ingested
// once, so a second upload for the same date and opponent fails with
// store.ErrDuplicate instead of creating a row.
func (r *UploadRepository) Create(ctx context.Context, upload *store.Upload) error {
	if upload.UploadID == "" {
		upload.UploadID = uuid.NewString()
	}

	query := `
		INSERT INTO uploads (upload_id, file_name, uploaded_by, match_date, opponent, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (match_date, opponent) DO NOTHING
		RETURNING upload_id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		upload.UploadID, upload.FileName, upload.UploadedBy,
		upload.MatchDate, upload.Opponent, upload.Status,
	).Scan(&upload.UploadID)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("upload for %s vs %s: %w",
			upload.MatchDate.Format("2006-01-02"), upload.Opponent, store.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("creating upload: %w", err)
	}

	return nil
}

// GetByID finds an upload by ID.
func (r *UploadRepository) GetByID(ctx context.Context, uploadID string) (*store.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE upload_id = $1`

	upload, err := scanUpload(r.db.DB().QueryRowContext(ctx, query, uploadID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload %s: %w", uploadID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying upload: %w", err)
	}

	return upload, nil
}

// FindByMatch finds the upload that produced a given match. Used to
// report which earlier ingestion a duplicate collides with.
func (r *UploadRepository) FindByMatch(ctx context.Context, matchDate string, opponent string) (*store.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE match_date = $1 AND opponent = $2`

	upload, err := scanUpload(r.db.DB().QueryRowContext(ctx, query, matchDate, opponent))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload for %s vs %s: %w", matchDate, opponent, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying upload: %w", err)
	}

	return upload, nil
}

// List returns recent uploads, newest first.
func (r *UploadRepository) List(ctx context.Context, limit int) ([]*store.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying uploads: %w", err)
	}
	defer rows.Close()

	var uploads []*store.Upload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		uploads = append(uploads, upload)
	}

	return uploads, rows.Err()
}

// SetProcessing marks an upload as in flight.
func (r *UploadRepository) SetProcessing(ctx context.Context, uploadID string) error {
	query := `UPDATE uploads SET status = $2, updated_at = NOW() WHERE upload_id = $1`

	if _, err := r.db.DB().ExecContext(ctx, query, uploadID, store.UploadStatusProcessing); err != nil {
		return fmt.Errorf("marking upload processing: %w", err)
	}

	return nil
}

// SetCompleted marks an upload as done and links the match it created.
func (r *UploadRepository) SetCompleted(ctx context.Context, uploadID string, matchID int64) error {
	query := `
		UPDATE uploads
		SET status = $2, match_id = $3, error_message = NULL, updated_at = NOW()
		WHERE upload_id = $1
	`

	if _, err := r.db.DB().ExecContext(ctx, query, uploadID, store.UploadStatusCompleted, matchID); err != nil {
		return fmt.Errorf("marking upload completed: %w", err)
	}

	return nil
}

// SetFailed marks an upload as failed and records why.
func (r *UploadRepository) SetFailed(ctx context.Context, uploadID string, reason string) error {
	query := `
		UPDATE uploads
		SET status = $2, error_message = $3, updated_at = NOW()
		WHERE upload_id = $1
	`

	if _, err := r.db.DB().ExecContext(ctx, query, uploadID, store.UploadStatusFailed, reason); err != nil {
		return fmt.Errorf("marking upload failed: %w", err)
	}

	return nil
}

// Delete removes an upload record. Only failed uploads may be removed
// so the game can be re-ingested.
func (r *UploadRepository) Delete(ctx context.Context, uploadID string) error {
	query := `DELETE FROM uploads WHERE upload_id = $1 AND status = $2`

	if _, err := r.db.DB().ExecContext(ctx, query, uploadID, store.UploadStatusFailed); err != nil {
		return fmt.Errorf("deleting upload: %w", err)
	}

	return nil
}
