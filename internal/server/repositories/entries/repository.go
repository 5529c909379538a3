package entries

import (
	"context"

	"github.com/inkveil/inkveil/internal/server/models"
)

type Repository interface {
	CreateOrUpdate(ctx context.Context, entry *models.Entry) error
	SelectAll(ctx context.Context, userID string) ([]*models.Entry, error)
}
