package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkveil/inkveil/internal/dbx"
	"github.com/inkveil/inkveil/internal/server/models"
	"github.com/inkveil/inkveil/internal/server/repositories/repomanager"
)

// EntryService implements journal entry sync. The server stores entry
// ciphertext verbatim; it cannot read titles or content.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewEntryService(db *sql.DB, repomanager repomanager.RepositoryManager) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: repomanager,
	}
}

// Sync upserts the client's pending entries in one transaction and returns
// the full server-side entry set for the user, soft-deleted rows included.
func (s *EntryService) Sync(ctx context.Context, userID string, pendingEntries []*models.Entry) ([]*models.Entry, error) {

	entryRepo := s.repomanager.Entries(s.db)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		entryRepoTx := s.repomanager.Entries(tx)
		for _, e := range pendingEntries {
			e.UserID = userID
			if err := entryRepoTx.CreateOrUpdate(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating entries: %v", err)
	}

	all, err := entryRepo.SelectAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	return all, nil
}
