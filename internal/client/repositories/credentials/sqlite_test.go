package credentials

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:credentialsrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS credentials (
  id TEXT PRIMARY KEY,
  wrapped_master_key BLOB,
  master_key_iv BLOB,
  prf_salt BLOB NOT NULL,
  prf_capable INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL
);
DELETE FROM credentials;
`)
	require.NoError(t, err)
	return db
}

func testCredential(id string) *models.Credential {
	return &models.Credential{
		Id:               id,
		WrappedMasterKey: []byte("wrapped-" + id),
		MasterKeyIV:      []byte("0123456789ab"),
		PRFSalt:          []byte("prf-salt-" + id),
		PRFCapable:       true,
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
	}
}

func TestUpsert_RewrapReplacesBlob(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	c := testCredential("cred1")
	require.NoError(t, repo.Upsert(ctx, c))

	c.WrappedMasterKey = []byte("rewrapped")
	c.MasterKeyIV = []byte("ba9876543210")
	require.NoError(t, repo.Upsert(ctx, c))

	got, err := repo.GetByID(ctx, "cred1")
	require.NoError(t, err)
	require.Equal(t, []byte("rewrapped"), got.WrappedMasterKey)
	require.Equal(t, []byte("ba9876543210"), got.MasterKeyIV)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestUpsert_NonPRFCredential(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &models.Credential{
		Id:         "cred-no-prf",
		PRFSalt:    []byte("salt"),
		PRFCapable: false,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, c))

	got, err := repo.GetByID(ctx, "cred-no-prf")
	require.NoError(t, err)
	require.Nil(t, got.WrappedMasterKey)
	require.False(t, got.PRFCapable)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteByID(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testCredential("cred1")))
	require.NoError(t, repo.DeleteByID(ctx, "cred1"))
	require.ErrorIs(t, repo.DeleteByID(ctx, "cred1"), common.ErrorNotFound)
}
