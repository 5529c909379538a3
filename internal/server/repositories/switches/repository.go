package switches

import (
	"context"
	"time"

	"github.com/inkveil/inkveil/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, sw *models.Switch) (*models.Switch, error)
	GetByID(ctx context.Context, id string) (*models.Switch, error)
	UpdateCheckIn(ctx context.Context, id string, userID string) (time.Time, error)
	SelectDue(ctx context.Context, now time.Time) ([]*models.Switch, error)
	MarkTriggered(ctx context.Context, id string, at time.Time) error
}
