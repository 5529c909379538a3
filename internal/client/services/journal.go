package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkveil/inkveil/internal/client/client"
	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/cryptox"
	"github.com/inkveil/inkveil/internal/exportx"
	"github.com/inkveil/inkveil/internal/logging"
	"github.com/inkveil/inkveil/internal/session"
)

const decryptWorkers = 8

// JournalService owns the entry lifecycle: everything is encrypted on the
// way into the local store and decrypted on the way out, under the session
// key.
type JournalService interface {
	Add(ctx context.Context, title, content string) (string, error)
	List(ctx context.Context) ([]models.Overview, error)
	Get(ctx context.Context, id string) (*models.JournalEntry, error)
	DeleteByID(ctx context.Context, id string) error
	Sync(ctx context.Context) error

	// DecryptAll returns every entry in plaintext, for exports and switch
	// payloads. Entries that fail to decrypt are skipped and counted.
	DecryptAll(ctx context.Context) ([]models.JournalEntry, int, error)
}

type journalService struct {
	client  client.Client
	repos   *client.Repositories
	session *session.Session
	logger  logging.Logger
}

func NewJournalService(c client.Client, repos *client.Repositories, sess *session.Session, logger logging.Logger) JournalService {
	return &journalService{client: c, repos: repos, session: sess, logger: logger}
}

// Add encrypts a new entry under the session key and stores it pending
// sync. The content hash is computed from plaintext and kept local.
func (s *journalService) Add(ctx context.Context, title, content string) (string, error) {
	key, err := s.session.Key()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	enc, err := cryptox.EncryptEntry(key, title, content)
	if err != nil {
		return "", fmt.Errorf("encryption error: %w", err)
	}

	now := time.Now().UTC()
	e := &models.Entry{
		Id:               uuid.NewString(),
		EncryptedTitle:   enc.TitleCipher,
		EncryptedContent: enc.ContentCipher,
		IV:               enc.IV,
		ContentHash:      exportx.ContentHash(title, content),
		CreatedAt:        now,
		UpdatedAt:        now,
		Pending:          true,
	}
	if err := s.repos.Entries.CreateOrUpdate(ctx, e); err != nil {
		return "", fmt.Errorf("saving error: %w", err)
	}
	return e.Id, nil
}

// List decrypts titles of all entries concurrently. An entry whose
// ciphertext fails to open is skipped rather than failing the whole listing;
// the failure count is logged.
func (s *journalService) List(ctx context.Context) ([]models.Overview, error) {
	key, err := s.session.Key()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	rows, err := s.repos.Entries.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}

	overviews := make([]*models.Overview, len(rows))
	failed := s.forEachDecrypted(ctx, rows, key, func(i int, title, _ string) {
		overviews[i] = &models.Overview{Id: rows[i].Id, Title: title, CreatedAt: rows[i].CreatedAt}
	})
	if failed > 0 {
		s.logger.Warn(ctx, "some entries failed to decrypt", "failed", failed, "total", len(rows))
	}

	result := make([]models.Overview, 0, len(rows))
	for _, o := range overviews {
		if o != nil {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (s *journalService) Get(ctx context.Context, id string) (*models.JournalEntry, error) {
	key, err := s.session.Key()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	row, err := s.repos.Entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title, content, err := cryptox.DecryptEntry(key, &cryptox.EncryptedEntry{
		TitleCipher:   row.EncryptedTitle,
		ContentCipher: row.EncryptedContent,
		IV:            row.IV,
	})
	if err != nil {
		return nil, err
	}

	return &models.JournalEntry{
		Id:        row.Id,
		Title:     title,
		Content:   content,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *journalService) DeleteByID(ctx context.Context, id string) error {
	return s.repos.Entries.DeleteByID(ctx, id)
}

// DecryptAll decrypts full entries concurrently and reports how many were
// skipped because their ciphertext would not open.
func (s *journalService) DecryptAll(ctx context.Context) ([]models.JournalEntry, int, error) {
	key, err := s.session.Key()
	if err != nil {
		return nil, 0, err
	}
	defer common.WipeByteArray(key)

	rows, err := s.repos.Entries.GetAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing entries: %w", err)
	}

	decrypted := make([]*models.JournalEntry, len(rows))
	failed := s.forEachDecrypted(ctx, rows, key, func(i int, title, content string) {
		decrypted[i] = &models.JournalEntry{
			Id:        rows[i].Id,
			Title:     title,
			Content:   content,
			CreatedAt: rows[i].CreatedAt,
			UpdatedAt: rows[i].UpdatedAt,
		}
	})

	result := make([]models.JournalEntry, 0, len(rows))
	for _, e := range decrypted {
		if e != nil {
			result = append(result, *e)
		}
	}
	return result, failed, nil
}

// forEachDecrypted fans entry decryption out over a bounded worker pool and
// calls collect for each success. collect runs once per index; writes to
// distinct indices need no lock.
func (s *journalService) forEachDecrypted(ctx context.Context, rows []models.Entry, key []byte, collect func(i int, title, content string)) int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	jobs := make(chan int)
	workers := decryptWorkers
	if len(rows) < workers {
		workers = len(rows)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				title, content, err := cryptox.DecryptEntry(key, &cryptox.EncryptedEntry{
					TitleCipher:   rows[i].EncryptedTitle,
					ContentCipher: rows[i].EncryptedContent,
					IV:            rows[i].IV,
				})
				if err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					s.logger.Debug(ctx, "entry decryption failed", "id", rows[i].Id)
					continue
				}
				collect(i, title, content)
			}
		}()
	}
	for i := range rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return failed
}

// Sync pushes pending entries and reconciles the local store with the
// server's entry set. Server rows carry no content hash (it never leaves
// the device), so hashes for pulled entries are recomputed from plaintext.
func (s *journalService) Sync(ctx context.Context) error {
	key, err := s.session.Key()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	pending, err := s.repos.Entries.GetAllPending(ctx)
	if err != nil {
		return fmt.Errorf("error retrieving pending entries: %w", err)
	}

	serverEntries, err := s.client.SyncEntries(ctx, pending)
	if err != nil {
		return err
	}

	for _, se := range serverEntries {
		if se.Deleted {
			se.ContentHash = ""
		} else {
			title, content, err := cryptox.DecryptEntry(key, &cryptox.EncryptedEntry{
				TitleCipher:   se.EncryptedTitle,
				ContentCipher: se.EncryptedContent,
				IV:            se.IV,
			})
			if err != nil {
				s.logger.Warn(ctx, "skipping undecryptable server entry", "id", se.Id)
				continue
			}
			se.ContentHash = exportx.ContentHash(title, content)
		}
		se.Pending = false
		if err := s.repos.Entries.CreateOrUpdate(ctx, se); err != nil {
			return fmt.Errorf("error storing synced entry: %w", err)
		}
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.Id)
	}
	return s.repos.Entries.MarkSynced(ctx, ids)
}
