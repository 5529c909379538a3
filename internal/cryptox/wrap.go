package cryptox

import (
	"fmt"

	"github.com/inkveil/inkveil/internal/common"
)

// WrapMasterKey encrypts the raw master-key bytes under a hardware-derived
// wrapping key so the blob can be stored next to the credential that
// produced it. A fresh random IV is generated per wrap; the client re-wraps
// whenever a new credential is registered or the master key changes.
func WrapMasterKey(masterKey, wrappingKey []byte) (wrapped, iv []byte, err error) {
	aead, err := newGCM(wrappingKey)
	if err != nil {
		return nil, nil, err
	}
	iv = common.GenerateRandByteArray(common.IVSize)
	wrapped = aead.Seal(nil, iv, masterKey, nil)
	return wrapped, iv, nil
}

// UnwrapMasterKey recovers the master key from a wrapped blob. Any failure
// (wrong wrapping key, e.g. a different authenticator's PRF evaluation, or
// corrupted storage) surfaces as common.ErrUnwrap; the caller falls back to
// password-based unlock.
func UnwrapMasterKey(wrapped, iv, wrappingKey []byte) ([]byte, error) {
	aead, err := newGCM(wrappingKey)
	if err != nil {
		return nil, err
	}
	// Open panics on a wrong-length nonce; a truncated IV from corrupted
	// storage must fail like any other unwrap.
	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("%w", common.ErrUnwrap)
	}
	masterKey, err := aead.Open(nil, iv, wrapped, nil)
	if err != nil {
		return nil, fmt.Errorf("%w", common.ErrUnwrap)
	}
	return masterKey, nil
}
