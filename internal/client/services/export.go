package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inkveil/inkveil/internal/client/client"
	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/cryptox"
	"github.com/inkveil/inkveil/internal/exportx"
	"github.com/inkveil/inkveil/internal/session"
)

// ErrConfirmationRequired rejects a replace-all import that was not
// explicitly confirmed by the caller.
var ErrConfirmationRequired = errors.New("replace-all import requires confirmation")

// ExportService moves entries across the export file boundary. Files are
// plaintext (compressed) unless a passphrase is given; imports re-encrypt
// everything under the current session key.
type ExportService interface {
	// Export decrypts all entries and produces an export blob. A nil
	// passphrase produces a plain (compressed, unencrypted) file.
	Export(ctx context.Context, passphrase []byte) ([]byte, error)

	// Import parses an export blob and merges it into the local store.
	// Returns the number of entries written. The replace-all policy
	// destroys existing entries and must be confirmed.
	Import(ctx context.Context, blob, passphrase []byte, policy exportx.MergePolicy, confirmedReplace bool) (int, error)
}

type exportService struct {
	repos   *client.Repositories
	session *session.Session
	journal JournalService
}

func NewExportService(repos *client.Repositories, sess *session.Session, journal JournalService) ExportService {
	return &exportService{repos: repos, session: sess, journal: journal}
}

func (s *exportService) Export(ctx context.Context, passphrase []byte) ([]byte, error) {
	decrypted, failed, err := s.journal.DecryptAll(ctx)
	if err != nil {
		return nil, err
	}
	if failed > 0 {
		return nil, fmt.Errorf("%w: %d entries unreadable", common.ErrDecryption, failed)
	}

	entries := make([]exportx.Entry, 0, len(decrypted))
	for _, e := range decrypted {
		entries = append(entries, exportx.Entry{
			Title:       e.Title,
			Content:     e.Content,
			CreatedAt:   e.CreatedAt,
			ContentHash: exportx.ContentHash(e.Title, e.Content),
		})
	}
	return exportx.Export(entries, passphrase)
}

func (s *exportService) Import(ctx context.Context, blob, passphrase []byte, policy exportx.MergePolicy, confirmedReplace bool) (int, error) {
	key, err := s.session.Key()
	if err != nil {
		return 0, err
	}
	defer common.WipeByteArray(key)

	parsed, err := exportx.Import(blob, passphrase)
	if err != nil {
		return 0, err
	}

	if policy == exportx.MergeReplaceAll {
		if !confirmedReplace {
			return 0, ErrConfirmationRequired
		}
		if err := s.repos.Entries.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("error clearing entries: %w", err)
		}
	}

	existing, err := s.repos.Entries.ContentHashes(ctx)
	if err != nil {
		return 0, fmt.Errorf("error loading content hashes: %w", err)
	}

	toImport := exportx.Merge(parsed.Entries, existing, policy)

	for _, e := range toImport {
		enc, err := cryptox.EncryptEntry(key, e.Title, e.Content)
		if err != nil {
			return 0, fmt.Errorf("encryption error: %w", err)
		}
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		row := &models.Entry{
			Id:               uuid.NewString(),
			EncryptedTitle:   enc.TitleCipher,
			EncryptedContent: enc.ContentCipher,
			IV:               enc.IV,
			ContentHash:      exportx.ContentHash(e.Title, e.Content),
			CreatedAt:        createdAt,
			UpdatedAt:        time.Now().UTC(),
			Pending:          true,
		}
		if err := s.repos.Entries.CreateOrUpdate(ctx, row); err != nil {
			return 0, fmt.Errorf("saving error: %w", err)
		}
	}
	return len(toImport), nil
}
