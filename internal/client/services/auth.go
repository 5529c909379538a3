// Package services contains the application services behind the Inkveil
// CLI. This file defines authentication: online/offline login, registration,
// hardware credential management and session lifecycle.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/inkveil/inkveil/internal/client/client"
	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/client/repositories/metadata"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/cryptox"
	"github.com/inkveil/inkveil/internal/dbx"
	"github.com/inkveil/inkveil/internal/session"
)

const prfSaltSize = 32

// AuthService owns login, registration and the unlocked session.
//
//   - OnlineLogin authenticates against the server and caches salt/verifier
//     for later offline logins.
//   - OfflineLogin verifies the password against the cached verifier without
//     any network traffic.
//   - HardwareUnlock reconstructs the master key from an authenticator's PRF
//     secret; an unwrap failure passes through as common.ErrUnwrap so the
//     caller can fall back to password unlock.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	OnlineLogin(ctx context.Context, username string, password []byte) error
	OfflineLogin(ctx context.Context, username string, password []byte) error
	HardwareUnlock(ctx context.Context, credentialID string, prfSecret []byte) error
	RegisterHardwareCredential(ctx context.Context, credentialID string, prfCapable bool, prfSecret []byte) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client  client.Client
	repos   *client.Repositories
	session *session.Session
}

func NewAuthService(c client.Client, repos *client.Repositories, sess *session.Session) AuthService {
	return &authService{client: c, repos: repos, session: sess}
}

// Register creates a new account: random salt, master key from the
// password, verifier from the master key. Only salt and verifier travel to
// the server.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(cryptox.MinSaltSize * 2)
	key, err := cryptox.DeriveMasterKey(password, salt)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	return a.client.Register(ctx, username, salt, cryptox.MakeVerifier(key))
}

// OnlineLogin authenticates against the server, caches offline login data
// and unlocks the session.
func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) error {
	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	key, err := cryptox.DeriveMasterKey(password, salt)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)
	verifier := cryptox.MakeVerifier(key)

	if err := a.client.Login(ctx, username, verifier); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.saveOfflineData(ctx, username, salt, verifier); err != nil {
		return fmt.Errorf("offline data saving error: %w", err)
	}

	return a.session.Unlock(session.Password{Password: password, Salt: salt})
}

// OfflineLogin derives a master key candidate from the cached salt and
// verifies it against the cached verifier. No server round trip.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) error {
	savedUsername, err := a.repos.Metadata.Get(ctx, "username")
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return client.ErrLocalDataNotAvailable
		}
		return err
	}
	if subtle.ConstantTimeCompare(savedUsername, []byte(username)) == 0 {
		return client.ErrUnauthorized
	}

	salt, err := a.repos.Metadata.Get(ctx, metadata.KeySalt)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return client.ErrLocalDataNotAvailable
		}
		return err
	}
	verifier, err := a.repos.Metadata.Get(ctx, metadata.KeyVerifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return client.ErrLocalDataNotAvailable
		}
		return err
	}

	key, err := cryptox.DeriveMasterKey(password, salt)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) == 0 {
		return client.ErrUnauthorized
	}

	return a.session.Unlock(session.Password{Password: password, Salt: salt})
}

// HardwareUnlock loads the credential's wrapped key blob and unwraps it
// under the PRF-derived wrapping key. common.ErrUnwrap means the secret
// came from a different authenticator; the caller falls back to password.
func (a *authService) HardwareUnlock(ctx context.Context, credentialID string, prfSecret []byte) error {
	cred, err := a.repos.Credentials.GetByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return client.ErrLocalDataNotAvailable
		}
		return err
	}
	if cred.WrappedMasterKey == nil {
		return client.ErrLocalDataNotAvailable
	}

	return a.session.Unlock(session.HardwarePRF{
		CredentialID: cred.Id,
		WrappedKey:   cred.WrappedMasterKey,
		IV:           cred.MasterKeyIV,
		PRFSecret:    prfSecret,
	})
}

// RegisterHardwareCredential records an authenticator. A PRF-capable one
// gets the current master key wrapped under its PRF-derived key; a
// non-capable one is recorded without key material and can never unlock the
// journal on its own. Re-registering replaces the wrapped blob.
func (a *authService) RegisterHardwareCredential(ctx context.Context, credentialID string, prfCapable bool, prfSecret []byte) error {
	cred := &models.Credential{
		Id:         credentialID,
		PRFSalt:    common.GenerateRandByteArray(prfSaltSize),
		PRFCapable: prfCapable,
		CreatedAt:  time.Now().UTC(),
	}

	if prfCapable {
		masterKey, err := a.session.Key()
		if err != nil {
			return err
		}
		defer common.WipeByteArray(masterKey)

		wrappingKey, err := cryptox.DeriveWrappingKey(prfSecret)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(wrappingKey)

		wrapped, iv, err := cryptox.WrapMasterKey(masterKey, wrappingKey)
		if err != nil {
			return err
		}
		cred.WrappedMasterKey = wrapped
		cred.MasterKeyIV = iv
	}

	return a.repos.Credentials.Upsert(ctx, cred)
}

// Logout wipes the session key and the cached token pair. Offline login
// data stays so the next login can run without the server.
func (a *authService) Logout(ctx context.Context) error {
	a.session.Clear()
	if err := a.repos.Metadata.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return err
	}
	return a.repos.Metadata.Delete(ctx, metadata.KeyRefreshToken)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	a.session.Clear()
	return a.client.Close()
}

func (a *authService) saveOfflineData(ctx context.Context, username string, salt, verifier []byte) error {
	return dbx.WithTx(ctx, a.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, "username", []byte(username)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeySalt, salt); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyVerifier, verifier)
	})
}
