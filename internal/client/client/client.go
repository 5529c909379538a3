package client

import (
	"context"
	"time"

	"github.com/inkveil/inkveil/internal/client/models"
)

// Client is the account server boundary. All entry payloads crossing it are
// ciphertext; the only key material ever sent is a switch payload key, once,
// at switch creation.
type Client interface {
	Close() error

	// Register creates an account from a salt and a password verifier.
	Register(ctx context.Context, username string, salt []byte, verifier []byte) error

	// GetSalt returns the KDF salt stored for a username.
	GetSalt(ctx context.Context, username string) ([]byte, error)

	// Login proves knowledge of the password via the verifier and stores the
	// token pair for subsequent calls.
	Login(ctx context.Context, username string, verifier []byte) error

	// Ping reports whether the server is reachable.
	Ping(ctx context.Context) error

	// SyncEntries pushes locally pending entries and returns the full
	// server-side entry set.
	SyncEntries(ctx context.Context, pending []*models.Entry) ([]*models.Entry, error)

	// CreateSwitch registers a switch and its payload key with the server
	// and returns the switch id plus a presigned URL to upload the
	// encrypted payload blob to.
	CreateSwitch(ctx context.Context, sw *models.Switch, payloadKey []byte) (id string, uploadURL string, err error)

	// CheckIn resets a switch timer. A triggered switch rejects check-ins.
	CheckIn(ctx context.Context, switchID string) (time.Time, error)

	// GetDisclosure fetches a triggered switch's payload download URL and
	// IV. It is anonymous: recipients hold no account.
	GetDisclosure(ctx context.Context, switchID string) (payloadURL string, iv []byte, err error)
}
