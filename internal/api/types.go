// Package api defines the JSON wire types shared by the client and the
// account server. Byte slices marshal as base64 strings.
package api

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type SaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Verifier []byte `json:"verifier"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type PingResponse struct {
	Status string `json:"status"`
}

// Entry is a journal entry on the wire. The server stores it verbatim and
// never sees the content hash, which is local-only plaintext derived data.
type Entry struct {
	Id               string    `json:"id"`
	EncryptedTitle   []byte    `json:"encryptedTitle"`
	EncryptedContent []byte    `json:"encryptedContent"`
	IV               []byte    `json:"iv"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Deleted          bool      `json:"deleted"`
}

type SyncRequest struct {
	Entries []Entry `json:"entries"`
}

type SyncResponse struct {
	Entries []Entry `json:"entries"`
}

// CreateSwitchRequest carries the switch configuration. PayloadKey is the
// one deliberate disclosure of key material to the server: it is what lets
// recipients without accounts read the payload after the trigger.
type CreateSwitchRequest struct {
	EncryptedName        []byte   `json:"encryptedName"`
	NameIV               []byte   `json:"nameIv"`
	TimerIntervalSeconds int64    `json:"timerIntervalSeconds"`
	Recipients           []string `json:"recipients"`
	HasPayload           bool     `json:"hasPayload"`
	PayloadKey           []byte   `json:"payloadKey,omitempty"`
	PayloadIV            []byte   `json:"payloadIv,omitempty"`
}

type CreateSwitchResponse struct {
	Id        string `json:"id"`
	UploadURL string `json:"uploadUrl,omitempty"`
}

type CheckInResponse struct {
	LastCheckIn time.Time `json:"lastCheckIn"`
	Triggered   bool      `json:"triggered"`
}

// DisclosureResponse is served anonymously for a triggered switch.
type DisclosureResponse struct {
	PayloadURL  string    `json:"payloadUrl"`
	IV          []byte    `json:"iv"`
	TriggeredAt time.Time `json:"triggeredAt"`
}
