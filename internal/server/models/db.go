// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. The server never sees the master password; it
// stores only the KDF salt and the SHA-256 verifier of the derived key.
type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}

// RefreshToken is an opaque rotating token row tied to a user.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// Entry is a journal entry as stored server-side. All content fields are
// ciphertext produced on the client; the server stores them verbatim.
type Entry struct {
	ID               string
	UserID           string
	EncryptedTitle   []byte
	EncryptedContent []byte
	IV               []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Deleted          bool
}

// Switch is a dead man's switch row. PayloadKey is held in escrow so that
// recipients without accounts can decrypt the payload once the switch
// triggers; EncryptedName stays opaque to the server.
type Switch struct {
	ID                   string
	UserID               string
	EncryptedName        []byte
	NameIV               []byte
	TimerIntervalSeconds int64
	Recipients           []string
	HasPayload           bool
	PayloadKey           []byte
	PayloadIV            []byte
	StorageKey           string
	LastCheckIn          time.Time
	IsTriggered          bool
	TriggeredAt          *time.Time
	CreatedAt            time.Time
}
