package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkveil/inkveil/internal/client/client"
	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/cryptox"
	"github.com/inkveil/inkveil/internal/logging"
	"github.com/inkveil/inkveil/internal/netx"
	"github.com/inkveil/inkveil/internal/session"
	"github.com/inkveil/inkveil/internal/switchx"
)

// SwitchService manages dead man's switches. Creating one with a payload
// renders the journal, encrypts it under a fresh payload key, uploads the
// blob, and hands the payload key to the server exactly once; the returned
// disclosure link carries the key in its fragment.
type SwitchService interface {
	Create(ctx context.Context, name string, interval time.Duration, recipients []string, includePayload bool) (link string, err error)
	List(ctx context.Context) ([]models.SwitchOverview, error)
	CheckIn(ctx context.Context, id string) (time.Time, error)

	// FetchDisclosure resolves a disclosure link to the decrypted payload.
	// It needs no session key: the payload key lives in the link fragment.
	FetchDisclosure(ctx context.Context, link string) ([]byte, error)
}

type switchService struct {
	client            client.Client
	repos             *client.Repositories
	session           *session.Session
	journal           JournalService
	renderer          Renderer
	disclosureBaseURL string
	logger            logging.Logger
}

func NewSwitchService(c client.Client, repos *client.Repositories, sess *session.Session,
	journal JournalService, renderer Renderer, disclosureBaseURL string, logger logging.Logger) SwitchService {
	return &switchService{
		client:            c,
		repos:             repos,
		session:           sess,
		journal:           journal,
		renderer:          renderer,
		disclosureBaseURL: disclosureBaseURL,
		logger:            logger,
	}
}

func (s *switchService) Create(ctx context.Context, name string, interval time.Duration, recipients []string, includePayload bool) (string, error) {
	masterKey, err := s.session.Key()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(masterKey)

	nameCipher, nameIV, err := cryptox.EncryptPayload(masterKey, []byte(name))
	if err != nil {
		return "", fmt.Errorf("name encryption error: %w", err)
	}

	sw := &models.Switch{
		EncryptedName: nameCipher,
		NameIV:        nameIV,
		TimerInterval: interval,
		LastCheckIn:   time.Now().UTC(),
		IsActive:      true,
		Recipients:    recipients,
	}

	var payloadKey, payloadCipher []byte
	if includePayload {
		entries, failed, err := s.journal.DecryptAll(ctx)
		if err != nil {
			return "", err
		}
		if failed > 0 {
			return "", fmt.Errorf("%w: %d entries unreadable", common.ErrDecryption, failed)
		}

		renderable := make([]models.RenderableEntry, 0, len(entries))
		for _, e := range entries {
			renderable = append(renderable, models.RenderableEntry{
				Title:     e.Title,
				Content:   e.Content,
				CreatedAt: e.CreatedAt,
			})
		}
		rendered, err := s.renderer.Render(renderable)
		if err != nil {
			return "", err
		}

		payloadKey = cryptox.GeneratePayloadKey()
		defer common.WipeByteArray(payloadKey)

		cipherText, iv, err := cryptox.EncryptPayload(payloadKey, rendered)
		if err != nil {
			return "", fmt.Errorf("payload encryption error: %w", err)
		}
		payloadCipher = cipherText
		sw.HasPayload = true
		sw.PayloadIV = iv
	}

	id, uploadURL, err := s.client.CreateSwitch(ctx, sw, payloadKey)
	if err != nil {
		return "", err
	}
	sw.Id = id

	if includePayload {
		if err := netx.UploadToPresignedURL(uploadURL, payloadCipher); err != nil {
			return "", fmt.Errorf("payload upload error: %w", err)
		}
	}

	if err := s.repos.Switches.Create(ctx, sw); err != nil {
		return "", fmt.Errorf("saving error: %w", err)
	}
	s.logger.Info(ctx, "switch created", "switch_id", id, "has_payload", includePayload)

	if !includePayload {
		return "", nil
	}
	return switchx.BuildDisclosureLink(s.disclosureBaseURL, id, payloadKey)
}

func (s *switchService) List(ctx context.Context) ([]models.SwitchOverview, error) {
	masterKey, err := s.session.Key()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(masterKey)

	rows, err := s.repos.Switches.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing switches: %w", err)
	}

	now := time.Now().UTC()
	result := make([]models.SwitchOverview, 0, len(rows))
	for _, row := range rows {
		name, err := cryptox.DecryptPayload(masterKey, row.EncryptedName, row.NameIV)
		if err != nil {
			s.logger.Warn(ctx, "switch name decryption failed", "switch_id", row.Id)
			continue
		}
		proto := switchx.Switch{
			TimerInterval: row.TimerInterval,
			LastCheckIn:   row.LastCheckIn,
			State:         switchx.StateActive,
		}
		if row.IsTriggered {
			proto.State = switchx.StateTriggered
		}
		result = append(result, models.SwitchOverview{
			Id:            row.Id,
			Name:          string(name),
			TimerInterval: row.TimerInterval,
			LastCheckIn:   row.LastCheckIn,
			IsTriggered:   row.IsTriggered,
			Due:           proto.Due(now),
			HasPayload:    row.HasPayload,
			Recipients:    row.Recipients,
		})
	}
	return result, nil
}

// CheckIn resets the timer on the server and mirrors the result locally.
// A triggered switch stays triggered; the local record is updated so later
// listings show the terminal state.
func (s *switchService) CheckIn(ctx context.Context, id string) (time.Time, error) {
	at, err := s.client.CheckIn(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrSwitchTriggered) {
			if mErr := s.repos.Switches.MarkTriggered(ctx, id, time.Now().UTC()); mErr != nil && !errors.Is(mErr, common.ErrorNotFound) {
				return time.Time{}, mErr
			}
		}
		return time.Time{}, err
	}

	if err := s.repos.Switches.UpdateCheckIn(ctx, id, at); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return time.Time{}, err
	}
	return at, nil
}

func (s *switchService) FetchDisclosure(ctx context.Context, link string) ([]byte, error) {
	switchID, payloadKey, err := switchx.ParseDisclosureLink(link)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(payloadKey)

	payloadURL, iv, err := s.client.GetDisclosure(ctx, switchID)
	if err != nil {
		return nil, err
	}

	blob, err := netx.DownloadFromPresignedURL(payloadURL)
	if err != nil {
		return nil, fmt.Errorf("payload download error: %w", err)
	}

	return cryptox.DecryptPayload(payloadKey, blob, iv)
}
