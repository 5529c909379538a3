// Package metadata is a small key/value store for local account state:
// the KDF salt, the login verifier check value, cached tokens and the
// last-sync watermark.
package metadata

import "context"

// Well-known metadata keys.
const (
	KeySalt         = "kdf_salt"
	KeyVerifier     = "verifier"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyLastSync     = "last_sync"
)

// Repository stores opaque values by key.
type Repository interface {
	// Get returns the value stored under key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
