package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/dbx"
)

// SQLiteRepository implements Repository over the credentials table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Credential) error {
	query := `INSERT INTO credentials
			(id, wrapped_master_key, master_key_iv, prf_salt, prf_capable, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				wrapped_master_key = excluded.wrapped_master_key,
				master_key_iv = excluded.master_key_iv,
				prf_salt = excluded.prf_salt,
				prf_capable = excluded.prf_capable
	`
	_, err := r.db.ExecContext(ctx, query,
		c.Id, c.WrappedMasterKey, c.MasterKeyIV, c.PRFSalt, c.PRFCapable, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	query := `SELECT id, wrapped_master_key, master_key_iv, prf_salt, prf_capable, created_at
			FROM credentials WHERE id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	c := &models.Credential{}
	if err := row.Scan(&c.Id, &c.WrappedMasterKey, &c.MasterKeyIV,
		&c.PRFSalt, &c.PRFCapable, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Credential, error) {
	query := `SELECT id, wrapped_master_key, master_key_iv, prf_salt, prf_capable, created_at
			FROM credentials ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	var result []models.Credential
	for rows.Next() {
		var c models.Credential
		if err := rows.Scan(&c.Id, &c.WrappedMasterKey, &c.MasterKeyIV,
			&c.PRFSalt, &c.PRFCapable, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
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
