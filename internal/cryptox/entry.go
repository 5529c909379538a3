package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/inkveil/inkveil/internal/common"
)

// EncryptedEntry carries the ciphertexts of one journal entry together with
// the single stored IV. Only the title IV is persisted; the content IV is
// always recomputed from it (see DeriveContentIV).
type EncryptedEntry struct {
	TitleCipher   []byte
	ContentCipher []byte
	IV            []byte
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// DeriveContentIV computes the content IV from the stored title IV by
// XOR-ing every byte with 0xFF. The two IVs therefore always differ, which
// keeps the (key, IV) pair unique across both fields of an entry without
// generating or storing a second random IV.
func DeriveContentIV(iv []byte) []byte {
	out := make([]byte, len(iv))
	for i, b := range iv {
		out[i] = b ^ 0xFF
	}
	return out
}

// EncryptEntry encrypts a journal entry's title and content under the
// session master key. One fresh random 96-bit IV is generated per call; the
// title is sealed under it directly and the content under the derived IV.
func EncryptEntry(key []byte, title, content string) (*EncryptedEntry, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := common.GenerateRandByteArray(common.IVSize)

	titleCipher := aead.Seal(nil, iv, []byte(title), nil)
	contentCipher := aead.Seal(nil, DeriveContentIV(iv), []byte(content), nil)

	return &EncryptedEntry{TitleCipher: titleCipher, ContentCipher: contentCipher, IV: iv}, nil
}

// contentIVStrategy maps the stored IV to the IV the content field was
// sealed under. Decryption tries the strategies in order; exception-driven
// fallback would blur which path succeeded.
type contentIVStrategy struct {
	name   string
	derive func(iv []byte) []byte
}

var decryptStrategies = []contentIVStrategy{
	// Current scheme: content under the derived IV.
	{name: "derived-iv", derive: DeriveContentIV},
	// Entries written before the derived-IV scheme used one shared IV for
	// both fields. Without this path those entries are permanently
	// unreadable.
	{name: "legacy-shared-iv", derive: func(iv []byte) []byte { return iv }},
}

// DecryptEntry reverses EncryptEntry. It first attempts the derived-IV
// scheme and, on an authentication failure, falls back to the legacy layout
// where title and content share the stored IV. If both paths fail the entry
// is unreadable (wrong key, corruption, or tampering) and the call returns
// common.ErrDecryption with no further fallback.
func DecryptEntry(key []byte, e *EncryptedEntry) (title, content string, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", "", err
	}
	// Open panics on a wrong-length nonce.
	if len(e.IV) != aead.NonceSize() {
		return "", "", fmt.Errorf("%w", common.ErrDecryption)
	}

	for _, s := range decryptStrategies {
		titlePlain, terr := aead.Open(nil, e.IV, e.TitleCipher, nil)
		if terr != nil {
			// The title is sealed under the stored IV on both paths, so a
			// title failure cannot be rescued by another strategy.
			break
		}
		contentPlain, cerr := aead.Open(nil, s.derive(e.IV), e.ContentCipher, nil)
		if cerr != nil {
			continue
		}
		return string(titlePlain), string(contentPlain), nil
	}

	return "", "", fmt.Errorf("%w", common.ErrDecryption)
}
