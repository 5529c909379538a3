// Package entries persists encrypted journal entries in the local store.
package entries

import (
	"context"

	"github.com/inkveil/inkveil/internal/client/models"
)

// Repository describes CRUD and query operations for encrypted entries.
// Implementations only ever see ciphertext.
type Repository interface {
	// CreateOrUpdate inserts a new entry or updates an existing one by Id.
	CreateOrUpdate(ctx context.Context, entry *models.Entry) error

	// GetAll returns all non-deleted entries.
	GetAll(ctx context.Context) ([]models.Entry, error)

	// GetByID returns an entry by its identifier.
	GetByID(ctx context.Context, id string) (*models.Entry, error)

	// DeleteByID marks an entry as deleted (tombstone).
	DeleteByID(ctx context.Context, id string) error

	// DeleteAll tombstones every entry. Used by the replace-all import
	// policy after the caller has explicitly confirmed the destruction.
	DeleteAll(ctx context.Context) error

	// ContentHashes returns the set of content hashes of non-deleted
	// entries, for merge-new-only imports.
	ContentHashes(ctx context.Context) (map[string]bool, error)

	// GetAllPending returns entries with local changes awaiting sync.
	GetAllPending(ctx context.Context) ([]*models.Entry, error)

	// MarkSynced clears the pending flag after a successful push.
	MarkSynced(ctx context.Context, ids []string) error
}
