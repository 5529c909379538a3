package services

import (
	"context"
	"testing"

	"github.com/inkveil/inkveil/internal/client/client"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/cryptox"
	"github.com/inkveil/inkveil/internal/session"
	"github.com/stretchr/testify/require"
)

func TestRegister_SendsSaltAndVerifierOnly(t *testing.T) {
	repos := setupRepos(t)
	fc := &fakeClient{}
	svc := NewAuthService(fc, repos, session.New())

	password := []byte("correct horse")
	require.NoError(t, svc.Register(context.Background(), "alice", password))

	require.Equal(t, "alice", fc.LastRegisterUser)
	require.Len(t, fc.LastRegisterSalt, 32)

	// the verifier matches the derived key, and is not the key itself
	key, err := cryptox.DeriveMasterKey(password, fc.LastRegisterSalt)
	require.NoError(t, err)
	require.Equal(t, cryptox.MakeVerifier(key), fc.LastRegisterVerifier)
	require.NotEqual(t, key, fc.LastRegisterVerifier)
}

func TestOnlineLogin_UnlocksSessionAndCachesOfflineData(t *testing.T) {
	repos := setupRepos(t)
	salt := common.GenerateRandByteArray(16)
	fc := &fakeClient{GetSaltRet: salt}
	sess := session.New()
	svc := NewAuthService(fc, repos, sess)
	ctx := context.Background()

	password := []byte("correct horse")
	require.NoError(t, svc.OnlineLogin(ctx, "alice", password))
	require.True(t, sess.Unlocked())

	// session key equals the derived master key
	key, err := cryptox.DeriveMasterKey(password, salt)
	require.NoError(t, err)
	sessionKey, err := sess.Key()
	require.NoError(t, err)
	require.Equal(t, key, sessionKey)

	// offline metadata was cached
	cachedSalt, err := repos.Metadata.Get(ctx, "kdf_salt")
	require.NoError(t, err)
	require.Equal(t, salt, cachedSalt)
}

func TestOnlineLogin_BadCredentials(t *testing.T) {
	repos := setupRepos(t)
	fc := &fakeClient{GetSaltRet: common.GenerateRandByteArray(16), LoginErr: client.ErrUnauthorized}
	sess := session.New()
	svc := NewAuthService(fc, repos, sess)

	err := svc.OnlineLogin(context.Background(), "alice", []byte("wrong"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.False(t, sess.Unlocked())
}

func TestOfflineLogin(t *testing.T) {
	repos := setupRepos(t)
	salt := common.GenerateRandByteArray(16)
	fc := &fakeClient{GetSaltRet: salt}
	sess := session.New()
	svc := NewAuthService(fc, repos, sess)
	ctx := context.Background()

	password := []byte("correct horse")
	require.NoError(t, svc.OnlineLogin(ctx, "alice", password))
	sess.Clear()

	// correct password verifies against the cached verifier
	require.NoError(t, svc.OfflineLogin(ctx, "alice", password))
	require.True(t, sess.Unlocked())
	sess.Clear()

	// wrong password
	require.ErrorIs(t, svc.OfflineLogin(ctx, "alice", []byte("wrong")), client.ErrUnauthorized)

	// wrong username
	require.ErrorIs(t, svc.OfflineLogin(ctx, "mallory", password), client.ErrUnauthorized)
}

func TestOfflineLogin_NoLocalData(t *testing.T) {
	repos := setupRepos(t)
	svc := NewAuthService(&fakeClient{}, repos, session.New())

	err := svc.OfflineLogin(context.Background(), "alice", []byte("pw"))
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestHardwareCredential_RoundTrip(t *testing.T) {
	repos := setupRepos(t)
	sess := unlockedSession(t)
	svc := NewAuthService(&fakeClient{}, repos, sess)
	ctx := context.Background()

	masterKey, err := sess.Key()
	require.NoError(t, err)

	prfSecret := common.GenerateRandByteArray(cryptox.PRFSecretSize)
	require.NoError(t, svc.RegisterHardwareCredential(ctx, "cred1", true, prfSecret))

	// a fresh locked session unlocks via the hardware path
	sess2 := session.New()
	svc2 := NewAuthService(&fakeClient{}, repos, sess2)
	require.NoError(t, svc2.HardwareUnlock(ctx, "cred1", prfSecret))

	key2, err := sess2.Key()
	require.NoError(t, err)
	require.Equal(t, masterKey, key2)
}

func TestHardwareUnlock_WrongAuthenticator(t *testing.T) {
	repos := setupRepos(t)
	sess := unlockedSession(t)
	svc := NewAuthService(&fakeClient{}, repos, sess)
	ctx := context.Background()

	prfSecret := common.GenerateRandByteArray(cryptox.PRFSecretSize)
	require.NoError(t, svc.RegisterHardwareCredential(ctx, "cred1", true, prfSecret))

	otherSecret := common.GenerateRandByteArray(cryptox.PRFSecretSize)
	sess2 := session.New()
	svc2 := NewAuthService(&fakeClient{}, repos, sess2)

	err := svc2.HardwareUnlock(ctx, "cred1", otherSecret)
	require.ErrorIs(t, err, common.ErrUnwrap)
	require.False(t, sess2.Unlocked())
}

func TestRegisterHardwareCredential_NonPRF(t *testing.T) {
	repos := setupRepos(t)
	sess := unlockedSession(t)
	svc := NewAuthService(&fakeClient{}, repos, sess)
	ctx := context.Background()

	require.NoError(t, svc.RegisterHardwareCredential(ctx, "cred-no-prf", false, nil))

	cred, err := repos.Credentials.GetByID(ctx, "cred-no-prf")
	require.NoError(t, err)
	require.Nil(t, cred.WrappedMasterKey)

	// a non-PRF credential can never unlock
	err = svc.HardwareUnlock(ctx, "cred-no-prf", common.GenerateRandByteArray(cryptox.PRFSecretSize))
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestRegisterHardwareCredential_RequiresUnlockedSession(t *testing.T) {
	repos := setupRepos(t)
	svc := NewAuthService(&fakeClient{}, repos, session.New())

	prfSecret := common.GenerateRandByteArray(cryptox.PRFSecretSize)
	err := svc.RegisterHardwareCredential(context.Background(), "cred1", true, prfSecret)
	require.ErrorIs(t, err, common.ErrKeyUnavailable)
}

func TestLogout_ClearsSessionKeepsOfflineData(t *testing.T) {
	repos := setupRepos(t)
	salt := common.GenerateRandByteArray(16)
	fc := &fakeClient{GetSaltRet: salt}
	sess := session.New()
	svc := NewAuthService(fc, repos, sess)
	ctx := context.Background()

	require.NoError(t, svc.OnlineLogin(ctx, "alice", []byte("pw")))
	require.NoError(t, svc.Logout(ctx))
	require.False(t, sess.Unlocked())

	// offline login still works after logout
	require.NoError(t, svc.OfflineLogin(ctx, "alice", []byte("pw")))
}
