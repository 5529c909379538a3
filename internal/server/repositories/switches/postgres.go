// Package switches provides a PostgreSQL-backed repository for dead man's
// switch rows, including the due-switch sweep query.
package switches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/dbx"
	"github.com/inkveil/inkveil/internal/server/models"
)

// PostgresRepository implements switch storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new switch and fills in the DB-assigned ID and initial
// check-in time. Recipients are stored as a JSON array.
func (r *PostgresRepository) Create(ctx context.Context, sw *models.Switch) (*models.Switch, error) {
	recipients, err := json.Marshal(sw.Recipients)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal recipients: %w", err)
	}

	query := `
		INSERT INTO switches (user_id, encrypted_name, name_iv, timer_interval_seconds, recipients,
			has_payload, payload_key, payload_iv, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, last_check_in
	`
	err = r.db.QueryRowContext(ctx, query,
		sw.UserID, sw.EncryptedName, sw.NameIV, sw.TimerIntervalSeconds, recipients,
		sw.HasPayload, sw.PayloadKey, sw.PayloadIV, sw.StorageKey,
	).Scan(&sw.ID, &sw.LastCheckIn)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sw, nil
}

const selectColumns = `id, user_id, encrypted_name, name_iv, timer_interval_seconds, recipients,
		has_payload, payload_key, payload_iv, storage_key, last_check_in, is_triggered, triggered_at, created_at`

func scanSwitch(scan func(dest ...any) error) (*models.Switch, error) {
	sw := &models.Switch{}
	var recipients []byte
	var triggeredAt sql.NullTime
	if err := scan(
		&sw.ID, &sw.UserID, &sw.EncryptedName, &sw.NameIV, &sw.TimerIntervalSeconds, &recipients,
		&sw.HasPayload, &sw.PayloadKey, &sw.PayloadIV, &sw.StorageKey,
		&sw.LastCheckIn, &sw.IsTriggered, &triggeredAt, &sw.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recipients, &sw.Recipients); err != nil {
		return nil, fmt.Errorf("cannot unmarshal recipients: %w", err)
	}
	if triggeredAt.Valid {
		t := triggeredAt.Time
		sw.TriggeredAt = &t
	}
	return sw, nil
}

// GetByID returns the switch row for id, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Switch, error) {
	query := `SELECT ` + selectColumns + ` FROM switches WHERE id = $1`

	sw, err := scanSwitch(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sw, nil
}

// UpdateCheckIn resets the countdown for an untriggered switch owned by
// userID and returns the new check-in time. A triggered or foreign switch
// is reported as common.ErrorNotFound; callers that need to distinguish the
// two cases should follow up with GetByID.
func (r *PostgresRepository) UpdateCheckIn(ctx context.Context, id string, userID string) (time.Time, error) {
	query := `
		UPDATE switches SET last_check_in = now()
		WHERE id = $1 AND user_id = $2 AND is_triggered = false
		RETURNING last_check_in
	`
	var lastCheckIn time.Time
	if err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&lastCheckIn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrorNotFound
		}
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}
	return lastCheckIn, nil
}

// SelectDue returns untriggered switches whose check-in deadline has passed
// as of now.
func (r *PostgresRepository) SelectDue(ctx context.Context, now time.Time) ([]*models.Switch, error) {
	query := `SELECT ` + selectColumns + ` FROM switches
		WHERE is_triggered = false
		AND last_check_in + make_interval(secs => timer_interval_seconds) < $1
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to select switches: %w", err)
	}
	defer rows.Close()

	var result []*models.Switch
	for rows.Next() {
		sw, err := scanSwitch(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkTriggered moves a switch into its terminal state. Triggering is
// idempotent at the repository level: an already triggered switch is left
// untouched and reported as common.ErrorNotFound.
func (r *PostgresRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE switches SET is_triggered = true, triggered_at = $2
		WHERE id = $1 AND is_triggered = false
	`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
