package cryptox

import (
	"fmt"

	"github.com/inkveil/inkveil/internal/common"
)

// GeneratePayloadKey mints the single-use 256-bit key protecting one
// switch's attached payload. Deliberately independent of every KDF path:
// the payload must remain decryptable by recipients who will never hold the
// user's password or hardware credential. The key travels once, inside the
// disclosure link's URL fragment, and is never reused across switches.
func GeneratePayloadKey() []byte {
	return common.GenerateRandByteArray(common.MasterKeySize)
}

// EncryptPayload seals an opaque binary payload (e.g. a rendered PDF) under
// a payload key with a fresh random IV.
func EncryptPayload(key, payload []byte) (cipherText, iv []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	iv = common.GenerateRandByteArray(common.IVSize)
	cipherText = aead.Seal(nil, iv, payload, nil)
	return cipherText, iv, nil
}

// DecryptPayload reverses EncryptPayload. Tag mismatches surface as
// common.ErrDecryption.
func DecryptPayload(key, cipherText, iv []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	// Open panics on a wrong-length nonce.
	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("%w", common.ErrDecryption)
	}
	payload, err := aead.Open(nil, iv, cipherText, nil)
	if err != nil {
		return nil, fmt.Errorf("%w", common.ErrDecryption)
	}
	return payload, nil
}
