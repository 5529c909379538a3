// Package session owns the single mutable piece of state in the encryption
// core: the in-memory master key of the active session. The key is never
// serialized; after a process restart it is reconstructed from a Source,
// not restored.
package session

import (
	"fmt"
	"sync"

	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/cryptox"
)

// Source is the tagged union of ways a master key can be reconstructed at
// unlock time. Downstream cipher code never branches on the source; it only
// ever sees the uniform key handle.
type Source interface {
	resolve() ([]byte, error)
}

// Password derives the master key from the account password and salt.
type Password struct {
	Password []byte
	Salt     []byte
}

func (p Password) resolve() ([]byte, error) {
	return cryptox.DeriveMasterKey(p.Password, p.Salt)
}

// HardwarePRF recovers the master key by unwrapping the credential's stored
// blob under a key derived from the authenticator's PRF output.
type HardwarePRF struct {
	CredentialID string
	WrappedKey   []byte
	IV           []byte
	PRFSecret    []byte
}

func (h HardwarePRF) resolve() ([]byte, error) {
	wrappingKey, err := cryptox.DeriveWrappingKey(h.PRFSecret)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(wrappingKey)
	return cryptox.UnwrapMasterKey(h.WrappedKey, h.IV, wrappingKey)
}

// Session is the explicit handle passed to every component that encrypts or
// decrypts under the master key. Read-mostly: many concurrent Key() readers,
// rare Unlock/Clear writers. A Clear racing an in-flight operation makes
// the next Key() call fail with common.ErrKeyUnavailable instead of handing
// out a stale or nil key.
type Session struct {
	mu  sync.RWMutex
	key []byte
}

func New() *Session {
	return &Session{}
}

// Unlock resolves the source into a master key and installs it, replacing
// any previous key. Unwrap failures from a hardware source pass through as
// common.ErrUnwrap so the caller can fall back to password unlock.
func (s *Session) Unlock(src Source) error {
	key, err := src.resolve()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = key
	return nil
}

// Key returns a private copy of the master key, or common.ErrKeyUnavailable
// if the session is locked. Returning a copy keeps an in-flight operation's
// key bytes valid even if Clear runs underneath it.
func (s *Session) Key() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil, fmt.Errorf("%w", common.ErrKeyUnavailable)
	}
	out := make([]byte, len(s.key))
	copy(out, s.key)
	return out, nil
}

// Unlocked reports whether a master key is currently installed.
func (s *Session) Unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil
}

// Clear wipes the master key and invalidates the handle for any holder.
// Called on logout; safe to call repeatedly.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = nil
}
