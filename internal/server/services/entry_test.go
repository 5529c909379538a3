package services

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/inkveil/inkveil/internal/dbx"
	"github.com/inkveil/inkveil/internal/server/models"
	"github.com/inkveil/inkveil/internal/server/repositories/entries"
	"github.com/inkveil/inkveil/internal/server/repositories/refreshtokens"
	"github.com/inkveil/inkveil/internal/server/repositories/repomanager"
	"github.com/inkveil/inkveil/internal/server/repositories/switches"
	"github.com/inkveil/inkveil/internal/server/repositories/users"
)

// -------- test fakes --------

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeEntriesRepo struct {
	entries.Repository

	selAll []*models.Entry
	selErr error

	createErr error

	created []*models.Entry
}

func (f *fakeEntriesRepo) SelectAll(ctx context.Context, userID string) ([]*models.Entry, error) {
	return f.selAll, f.selErr
}

func (f *fakeEntriesRepo) CreateOrUpdate(ctx context.Context, e *models.Entry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, e)
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	u *fakeUsersRepo
	r *fakeRefreshRepo
	e *fakeEntriesRepo
	s *fakeSwitchesRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository             { return m.e }
func (m *fakeRepoManager) Switches(db dbx.DBTX) switches.Repository           { return m.s }

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// -------- tests --------

func TestSync_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	e := &fakeEntriesRepo{
		selAll: []*models.Entry{
			{ID: "p1", UserID: "user-1"},
			{ID: "o1", UserID: "user-1", Deleted: true},
		},
	}
	m := &fakeRepoManager{e: e}

	s := NewEntryService(db, m)

	ctx := context.Background()
	pending := []*models.Entry{
		{ID: "p1", EncryptedTitle: []byte("t"), EncryptedContent: []byte("c"), IV: []byte("iv"), UpdatedAt: time.Now()},
		{ID: "p2"},
	}
	all, err := s.Sync(ctx, "user-1", pending)
	if err != nil {
		t.Fatalf("Sync error: %v", err)
	}

	if len(e.created) != 2 || e.created[0].ID != "p1" || e.created[1].ID != "p2" {
		t.Fatalf("Entries.CreateOrUpdate calls: %+v", e.created)
	}
	if e.created[0].UserID != "user-1" || e.created[1].UserID != "user-1" {
		t.Fatalf("UserID not stamped on pending entries: %+v", e.created)
	}
	if len(all) != 2 || all[1].ID != "o1" || !all[1].Deleted {
		t.Fatalf("unexpected result set: %+v", all)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestSync_CreateErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	e := &fakeEntriesRepo{createErr: errBoom{}}
	m := &fakeRepoManager{e: e}
	s := NewEntryService(db, m)

	_, err := s.Sync(context.Background(), "user-1", []*models.Entry{{ID: "p1"}})
	if err == nil || !regexp.MustCompile(`error creating entries: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped create error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestSync_SelectAllErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	e := &fakeEntriesRepo{selErr: errBoom{}}
	m := &fakeRepoManager{e: e}
	s := NewEntryService(db, m)

	_, err := s.Sync(context.Background(), "user-1", nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
