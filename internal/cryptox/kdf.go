// Package cryptox implements the Inkveil encryption core: key derivation,
// entry encryption, master-key wrapping, and payload encryption.
//
// Every function here is a pure, stateless transform over explicit key and
// byte inputs. Nothing is cached, nothing touches the network or disk, and
// callers own the lifetime of all returned key material. This is what makes
// the primitives safe to call concurrently without coordination.
package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/inkveil/inkveil/internal/common"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// MasterKeyIterations is the PBKDF2 iteration count for password-based
	// master-key derivation. Changing it changes every derived key, so it is
	// part of the on-disk format, not a tunable.
	MasterKeyIterations = 100_000

	// MinSaltSize is the smallest acceptable account salt (128 bits).
	MinSaltSize = 16

	// PRFSecretSize is the output length of the WebAuthn PRF extension.
	PRFSecretSize = 32

	// wrappingKeyInfo domain-separates the HKDF output so a wrapping key can
	// only ever be used for wrap/unwrap, never confused with a master key.
	wrappingKeyInfo = "inkveil-prf-wrapping-key-v1"

	// exportKeyInfo domain-separates export keys from session master keys.
	exportKeyInfo = "inkveil-export-key-v1"
)

// DeriveMasterKey stretches a password and the account salt into the 256-bit
// session master key using PBKDF2-HMAC-SHA256. Deterministic: the same
// inputs always produce the same key, which is what makes the key
// reconstructable after a page reload or on a second device.
//
// The salt is issued once at registration and is not secret; it must be at
// least MinSaltSize bytes or the call fails with common.ErrKeyDerivation.
func DeriveMasterKey(password, salt []byte) ([]byte, error) {
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: salt too short", common.ErrKeyDerivation)
	}
	return pbkdf2.Key(password, salt, MasterKeyIterations, common.MasterKeySize, sha256.New), nil
}

// MakeVerifier hashes a master key into the value sent to (and stored by)
// the server at registration. The server compares verifiers in constant
// time; it never sees the password or the key itself.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveWrappingKey turns a hardware authenticator's PRF output into the
// key that wraps the master key for storage. HKDF-SHA256 with an empty salt
// and a fixed, implementation-identifying info string: the PRF output is
// already uniform, so HKDF serves purely as domain separation here.
//
// The secret must be exactly PRFSecretSize bytes; anything else means the
// authenticator misbehaved and fails with common.ErrKeyDerivation.
func DeriveWrappingKey(secret []byte) ([]byte, error) {
	if len(secret) != PRFSecretSize {
		return nil, fmt.Errorf("%w: unexpected authenticator secret length", common.ErrKeyDerivation)
	}
	r := hkdf.New(sha256.New, secret, nil, []byte(wrappingKeyInfo))
	key := make([]byte, common.MasterKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyDerivation, err)
	}
	return key, nil
}

// DeriveExportKey derives the key protecting a passphrase-encrypted export
// file. Same KDF family as the master key path, but the PBKDF2 output is
// passed through an HKDF expand step under an export-scoped info string, so
// an export key can never collide with a session master key even for
// identical passphrase and salt inputs.
//
// The salt is generated fresh per export and stored in the file header.
func DeriveExportKey(passphrase, salt []byte) ([]byte, error) {
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: salt too short", common.ErrKeyDerivation)
	}
	prk := pbkdf2.Key(passphrase, salt, MasterKeyIterations, common.MasterKeySize, sha256.New)
	defer common.WipeByteArray(prk)

	r := hkdf.Expand(sha256.New, prk, []byte(exportKeyInfo))
	key := make([]byte, common.MasterKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyDerivation, err)
	}
	return key, nil
}
