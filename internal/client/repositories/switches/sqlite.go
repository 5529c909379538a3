package switches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/dbx"
)

// SQLiteRepository implements Repository over the switches table. Recipients
// are stored as a JSON array in a TEXT column.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, s *models.Switch) error {
	recipients, err := json.Marshal(s.Recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal recipients: %w", err)
	}
	query := `INSERT INTO switches
			(id, encrypted_name, name_iv, timer_interval_seconds, last_check_in,
			 is_active, is_triggered, triggered_at, has_payload, payload_iv, recipients)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var triggeredAt any
	if !s.TriggeredAt.IsZero() {
		triggeredAt = s.TriggeredAt
	}
	_, err = r.db.ExecContext(ctx, query,
		s.Id, s.EncryptedName, s.NameIV, int64(s.TimerInterval/time.Second),
		s.LastCheckIn, s.IsActive, s.IsTriggered, triggeredAt,
		s.HasPayload, s.PayloadIV, string(recipients))
	if err != nil {
		return fmt.Errorf("failed to insert switch: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Switch, error) {
	query := selectColumns + ` WHERE id=?`
	row := r.db.QueryRowContext(ctx, query, id)
	s, err := scanSwitch(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Switch, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY last_check_in`)
	if err != nil {
		return nil, fmt.Errorf("failed to select switches: %w", err)
	}
	defer rows.Close()

	var result []models.Switch
	for rows.Next() {
		s, err := scanSwitch(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateCheckIn(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE switches SET last_check_in=? WHERE id=? AND is_triggered=0`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to update check-in: %w", err)
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

func (r *SQLiteRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE switches SET is_triggered=1, is_active=0, triggered_at=? WHERE id=? AND is_triggered=0`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark switch triggered: %w", err)
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

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM switches WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete switch: %w", err)
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

const selectColumns = `SELECT id, encrypted_name, name_iv, timer_interval_seconds, last_check_in,
			is_active, is_triggered, triggered_at, has_payload, payload_iv, recipients
			FROM switches`

func scanSwitch(scan func(dest ...any) error) (*models.Switch, error) {
	s := &models.Switch{}
	var intervalSeconds int64
	var triggeredAt sql.NullTime
	var recipients string
	if err := scan(&s.Id, &s.EncryptedName, &s.NameIV, &intervalSeconds, &s.LastCheckIn,
		&s.IsActive, &s.IsTriggered, &triggeredAt, &s.HasPayload, &s.PayloadIV, &recipients); err != nil {
		return nil, err
	}
	s.TimerInterval = time.Duration(intervalSeconds) * time.Second
	if triggeredAt.Valid {
		s.TriggeredAt = triggeredAt.Time
	}
	if err := json.Unmarshal([]byte(recipients), &s.Recipients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipients: %w", err)
	}
	return s, nil
}
