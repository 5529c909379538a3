// Package credentials persists registered hardware authenticators and
// their wrapped-master-key blobs.
package credentials

import (
	"context"

	"github.com/inkveil/inkveil/internal/client/models"
)

// Repository stores hardware credentials. A credential carries at most one
// wrapped master key; re-wrapping replaces the previous blob.
type Repository interface {
	// Upsert inserts a credential or replaces its wrapped key material.
	Upsert(ctx context.Context, c *models.Credential) error

	// GetByID returns a credential by its authenticator id.
	GetByID(ctx context.Context, id string) (*models.Credential, error)

	// GetAll returns every registered credential.
	GetAll(ctx context.Context) ([]models.Credential, error)

	// DeleteByID removes a credential.
	DeleteByID(ctx context.Context, id string) error
}
