// Package common defines shared constants and sentinel errors used across
// client and server layers of Inkveil. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Crypto-core errors. These make up the whole failure surface of the
	// encryption core; no other error values cross its boundary.

	// ErrKeyDerivation reports a malformed salt encoding or an
	// authenticator secret of the wrong length.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrKeyUnavailable reports an operation attempted with no unlocked
	// session key (not logged in, or logged out mid-flight).
	ErrKeyUnavailable = errors.New("master key unavailable")

	// ErrDecryption reports an AEAD authentication failure on both the
	// current and the legacy decryption paths. It deliberately does not
	// distinguish wrong-key from corrupted-ciphertext.
	ErrDecryption = errors.New("decryption failed")

	// ErrUnwrap reports that a hardware-wrapped master key could not be
	// opened, e.g. the PRF secret came from a different authenticator.
	// Callers must fall back to password unlock.
	ErrUnwrap = errors.New("cannot unwrap master key")

	// ErrFormat reports a structurally invalid export file.
	ErrFormat = errors.New("invalid export file")

	// ErrPassphrase reports an encrypted export file with a missing or
	// incorrect passphrase. Never reported as ErrFormat: the caller's
	// recovery action differs.
	ErrPassphrase = errors.New("missing or incorrect passphrase")

	// Switch lifecycle errors.

	// ErrSwitchTriggered rejects operations on a switch that has already
	// reached its terminal state.
	ErrSwitchTriggered = errors.New("switch already triggered")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
