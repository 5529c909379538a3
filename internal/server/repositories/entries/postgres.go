// Package entries provides PostgreSQL-backed repositories for server-side
// journal entry persistence and sync queries.
package entries

import (
	"context"
	"fmt"

	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/dbx"
	"github.com/inkveil/inkveil/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrUpdate upserts an entry by ID for a specific user. Entry IDs are
// client-assigned, so a conflicting row owned by another user means the
// caller is not allowed to touch it; no row is updated and
// common.ErrorUnauthorized is returned.
func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (id, user_id, encrypted_title, encrypted_content, iv, created_at, updated_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET
			encrypted_title = EXCLUDED.encrypted_title,
			encrypted_content = EXCLUDED.encrypted_content,
			iv = EXCLUDED.iv,
			updated_at = EXCLUDED.updated_at,
			deleted = EXCLUDED.deleted
			WHERE entries.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.EncryptedTitle, entry.EncryptedContent, entry.IV,
		entry.CreatedAt, entry.UpdatedAt, entry.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorUnauthorized
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// SelectAll returns every entry belonging to userID, including soft-deleted
// rows so that deletions propagate to other devices.
func (r *PostgresRepository) SelectAll(ctx context.Context, userID string) ([]*models.Entry, error) {
	query := ` SELECT id, encrypted_title, encrypted_content, iv, created_at, updated_at, deleted from entries
		WHERE user_id=$1
		`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(
			&item.ID, &item.EncryptedTitle, &item.EncryptedContent, &item.IV,
			&item.CreatedAt, &item.UpdatedAt, &item.Deleted,
		); err != nil {
			return nil, err
		}
		item.UserID = userID
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
