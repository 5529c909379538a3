// Package models defines client-side data models used by the Inkveil CLI.
package models

import "time"

// Entry is a journal entry at rest in the local store and on the server:
// opaque ciphertext plus the single stored IV. The content field is
// encrypted under an IV derived from this one, never under a second stored
// IV (see cryptox.DeriveContentIV).
type Entry struct {
	// Id is a globally unique identifier for the entry.
	Id string

	// EncryptedTitle is AEAD ciphertext of the title under the stored IV.
	EncryptedTitle []byte

	// EncryptedContent is AEAD ciphertext of the content under the derived
	// IV (or, for entries predating the derived-IV scheme, under the same
	// stored IV; the decrypt path handles both).
	EncryptedContent []byte

	// IV is the stored 96-bit title IV.
	IV []byte

	// ContentHash deduplicates imports. Local only: it is a hash of
	// plaintext and is never synced to the server.
	ContentHash string

	// CreatedAt/UpdatedAt are entry timestamps in UTC.
	CreatedAt time.Time
	UpdatedAt time.Time

	// Deleted marks the entry as a tombstone.
	Deleted bool

	// Pending marks local changes not yet pushed to the server.
	Pending bool
}

// Credential is a registered hardware authenticator. It either carries no
// wrapped key (password unlock required after reload) or exactly one
// wrapped-master-key blob, re-wrapped whenever the master key changes.
type Credential struct {
	// Id is the authenticator's credential id, base64url.
	Id string

	// WrappedMasterKey is the master key sealed under the PRF-derived
	// wrapping key; nil when the credential cannot unlock the journal.
	WrappedMasterKey []byte

	// MasterKeyIV is the wrap IV accompanying WrappedMasterKey.
	MasterKeyIV []byte

	// PRFSalt is the salt handed to the authenticator's PRF extension,
	// base64url on the wire.
	PRFSalt []byte

	// PRFCapable records whether the authenticator supports the PRF
	// extension at all.
	PRFCapable bool

	CreatedAt time.Time
}

// Switch is the local record of one dead man's switch.
type Switch struct {
	Id            string
	EncryptedName []byte
	NameIV        []byte
	TimerInterval time.Duration
	LastCheckIn   time.Time
	IsActive      bool
	IsTriggered   bool
	TriggeredAt   time.Time
	HasPayload    bool
	PayloadIV     []byte
	Recipients    []string
}
