// Package common contains shared constants and sentinel errors used across
// Inkveil components.
package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// on authenticated requests.
const AccessTokenHeaderName = "Authorization"

// MasterKeySize is the size in bytes of every symmetric key in the system:
// master keys, wrapping keys, payload keys, and export keys (AES-256).
const MasterKeySize = 32

// IVSize is the AES-GCM nonce size in bytes (96 bits).
const IVSize = 12
