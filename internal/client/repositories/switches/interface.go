// Package switches persists the local view of dead man's switches.
package switches

import (
	"context"
	"time"

	"github.com/inkveil/inkveil/internal/client/models"
)

// Repository stores switch records. The name is ciphertext; the timer and
// lifecycle fields are plaintext because the server needs them to run the
// timer without the key.
type Repository interface {
	// Create inserts a new switch record.
	Create(ctx context.Context, s *models.Switch) error

	// GetByID returns a switch by id.
	GetByID(ctx context.Context, id string) (*models.Switch, error)

	// GetAll returns every switch.
	GetAll(ctx context.Context) ([]models.Switch, error)

	// UpdateCheckIn records a successful check-in at the given time.
	UpdateCheckIn(ctx context.Context, id string, at time.Time) error

	// MarkTriggered records the transition into the triggered state.
	MarkTriggered(ctx context.Context, id string, at time.Time) error

	// DeleteByID removes a switch.
	DeleteByID(ctx context.Context, id string) error
}
