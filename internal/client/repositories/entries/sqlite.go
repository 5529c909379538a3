package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateOrUpdate upserts an entry by id. On conflict, ciphertext columns and
// timestamps are updated; created_at is kept.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO entries
			(id, encrypted_title, encrypted_content, iv, content_hash, created_at, updated_at, deleted, pending)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				encrypted_title = excluded.encrypted_title,
				encrypted_content = excluded.encrypted_content,
				iv = excluded.iv,
				content_hash = excluded.content_hash,
				updated_at = excluded.updated_at,
				deleted = excluded.deleted,
				pending = excluded.pending
	`
	_, err := r.db.ExecContext(ctx, query,
		e.Id, e.EncryptedTitle, e.EncryptedContent, e.IV, e.ContentHash,
		e.CreatedAt, e.UpdatedAt, e.Deleted, e.Pending)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// GetAll lists all non-deleted entries with full ciphertext columns.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Entry, error) {
	query := `SELECT id, encrypted_title, encrypted_content, iv, content_hash, created_at, updated_at
			FROM entries WHERE deleted=0 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.Id, &item.EncryptedTitle, &item.EncryptedContent,
			&item.IV, &item.ContentHash, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a single non-deleted entry.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT id, encrypted_title, encrypted_content, iv, content_hash, created_at, updated_at
			FROM entries WHERE deleted=0 AND id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	e := &models.Entry{}
	if err := row.Scan(&e.Id, &e.EncryptedTitle, &e.EncryptedContent,
		&e.IV, &e.ContentHash, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return e, nil
}

// DeleteByID marks an entry as deleted (soft delete). It expects exactly one
// row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	query := `UPDATE entries SET deleted=1, pending=1 WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteAll tombstones every non-deleted entry.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE entries SET deleted=1, pending=1 WHERE deleted=0`)
	if err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

// ContentHashes returns the hash set of all non-deleted entries.
func (r *SQLiteRepository) ContentHashes(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT content_hash FROM entries WHERE deleted=0`)
	if err != nil {
		return nil, fmt.Errorf("failed to select hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]bool)
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes[h] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hashes, nil
}

// GetAllPending returns entries flagged pending=1 (awaiting sync).
func (r *SQLiteRepository) GetAllPending(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT id, encrypted_title, encrypted_content, iv, created_at, updated_at, deleted
			FROM entries WHERE pending=1`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []*models.Entry
	for rows.Next() {
		e := &models.Entry{Pending: true}
		if err := rows.Scan(&e.Id, &e.EncryptedTitle, &e.EncryptedContent,
			&e.IV, &e.CreatedAt, &e.UpdatedAt, &e.Deleted); err != nil {
			return nil, err
		}
		pending = append(pending, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

// MarkSynced clears the pending flag for the given ids.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE entries SET pending=0 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to mark entries synced: %w", err)
	}
	return nil
}
