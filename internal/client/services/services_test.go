package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inkveil/inkveil/internal/client/client"
	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/logging"
	"github.com/inkveil/inkveil/internal/session"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupRepos(t *testing.T) *client.Repositories {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	repos, err := client.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	repos.DB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = repos.DB.Close() })
	return repos
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func unlockedSession(t *testing.T) *session.Session {
	t.Helper()
	sess := session.New()
	salt := common.GenerateRandByteArray(16)
	require.NoError(t, sess.Unlock(session.Password{Password: []byte("correct horse"), Salt: salt}))
	return sess
}

// ---- fake client ----

// fakeClient implements client.Client for service unit tests.
type fakeClient struct {
	CloseErr    error
	RegisterErr error

	GetSaltRet []byte
	GetSaltErr error

	LoginErr error
	PingErr  error

	SyncEntriesRet []*models.Entry
	SyncEntriesErr error

	CreateSwitchId  string
	CreateSwitchURL string
	CreateSwitchErr error

	CheckInRet time.Time
	CheckInErr error

	DisclosureURL string
	DisclosureIV  []byte
	DisclosureErr error

	LastRegisterUser     string
	LastRegisterSalt     []byte
	LastRegisterVerifier []byte

	LastGetSaltUser string

	LastLoginUser     string
	LastLoginVerifier []byte

	LastSyncPending []*models.Entry

	LastCreateSwitch     *models.Switch
	LastCreatePayloadKey []byte

	LastCheckInID    string
	LastDisclosureID string
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) error {
	f.LastRegisterUser = username
	f.LastRegisterSalt = append([]byte(nil), salt...)
	f.LastRegisterVerifier = append([]byte(nil), verifier...)
	return f.RegisterErr
}

func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	f.LastGetSaltUser = username
	return append([]byte(nil), f.GetSaltRet...), f.GetSaltErr
}

func (f *fakeClient) Login(ctx context.Context, username string, verifier []byte) error {
	f.LastLoginUser = username
	f.LastLoginVerifier = append([]byte(nil), verifier...)
	return f.LoginErr
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) SyncEntries(ctx context.Context, pending []*models.Entry) ([]*models.Entry, error) {
	f.LastSyncPending = pending
	return f.SyncEntriesRet, f.SyncEntriesErr
}

func (f *fakeClient) CreateSwitch(ctx context.Context, sw *models.Switch, payloadKey []byte) (string, string, error) {
	f.LastCreateSwitch = sw
	f.LastCreatePayloadKey = append([]byte(nil), payloadKey...)
	return f.CreateSwitchId, f.CreateSwitchURL, f.CreateSwitchErr
}

func (f *fakeClient) CheckIn(ctx context.Context, switchID string) (time.Time, error) {
	f.LastCheckInID = switchID
	return f.CheckInRet, f.CheckInErr
}

func (f *fakeClient) GetDisclosure(ctx context.Context, switchID string) (string, []byte, error) {
	f.LastDisclosureID = switchID
	return f.DisclosureURL, append([]byte(nil), f.DisclosureIV...), f.DisclosureErr
}
