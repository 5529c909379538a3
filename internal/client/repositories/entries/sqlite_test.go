package entries

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:entriesrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
  id TEXT PRIMARY KEY,
  encrypted_title BLOB NOT NULL,
  encrypted_content BLOB NOT NULL,
  iv BLOB NOT NULL,
  content_hash TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0,
  pending INTEGER NOT NULL DEFAULT 0
);
DELETE FROM entries;
`)
	require.NoError(t, err)
	return db
}

func testEntry(id, hash string) *models.Entry {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Entry{
		Id:               id,
		EncryptedTitle:   []byte("ct-title-" + id),
		EncryptedContent: []byte("ct-content-" + id),
		IV:               []byte("0123456789ab"),
		ContentHash:      hash,
		CreatedAt:        now,
		UpdatedAt:        now,
		Pending:          true,
	}
}

func TestCreateOrUpdate_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	e := testEntry("e1", "h1")
	require.NoError(t, repo.CreateOrUpdate(ctx, e))

	e.EncryptedContent = []byte("ct-content-updated")
	require.NoError(t, repo.CreateOrUpdate(ctx, e))

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, []byte("ct-content-updated"), got.EncryptedContent)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetByID(context.Background(), "missing")
	require.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDeleteByID_Tombstones(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateOrUpdate(ctx, testEntry("e1", "h1")))
	require.NoError(t, repo.DeleteByID(ctx, "e1"))

	_, err := repo.GetByID(ctx, "e1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	// deleting twice reports not found
	require.ErrorIs(t, repo.DeleteByID(ctx, "e1"), common.ErrorNotFound)

	// tombstone still pending for sync
	pending, err := repo.GetAllPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.True(t, pending[0].Deleted)
}

func TestContentHashes(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateOrUpdate(ctx, testEntry("e1", "h1")))
	require.NoError(t, repo.CreateOrUpdate(ctx, testEntry("e2", "h2")))
	require.NoError(t, repo.DeleteByID(ctx, "e2"))

	hashes, err := repo.ContentHashes(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"h1": true}, hashes)
}

func TestDeleteAll(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateOrUpdate(ctx, testEntry("e1", "h1")))
	require.NoError(t, repo.CreateOrUpdate(ctx, testEntry("e2", "h2")))
	require.NoError(t, repo.DeleteAll(ctx))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestMarkSynced(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateOrUpdate(ctx, testEntry("e1", "h1")))
	require.NoError(t, repo.CreateOrUpdate(ctx, testEntry("e2", "h2")))

	require.NoError(t, repo.MarkSynced(ctx, []string{"e1"}))

	pending, err := repo.GetAllPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "e2", pending[0].Id)

	require.NoError(t, repo.MarkSynced(ctx, nil))
}
