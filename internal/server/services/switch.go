package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/logging"
	sc "github.com/inkveil/inkveil/internal/server/config"
	"github.com/inkveil/inkveil/internal/server/models"
	"github.com/inkveil/inkveil/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Disclosure is what recipients get for a triggered switch: a temporary URL
// for the encrypted payload plus the IV needed to decrypt it. The payload
// key itself travels in the disclosure link, never through this struct.
type Disclosure struct {
	PayloadURL  string
	IV          []byte
	TriggeredAt time.Time
}

// SwitchService manages dead man's switches: creation with payload upload,
// countdown check-ins, the due-switch sweep, and post-trigger disclosure.
type SwitchService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewSwitchService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *SwitchService {
	return &SwitchService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		logger:      logger,
	}
}

// GetRandomStorageKey returns a date-partitioned object storage key.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("payloads/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *SwitchService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func (s *SwitchService) getPresignedPutUrl(ctx context.Context) (string, string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey()

	// Presigned PUT
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))

	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

func (s *SwitchService) getPresignedGetUrl(ctx context.Context, key string) (string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	// Presigned GET
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// Create stores a new switch for userID. When the switch carries a payload,
// a storage key is allocated and a presigned PUT URL is returned so the
// client can upload the encrypted blob directly to object storage.
func (s *SwitchService) Create(ctx context.Context, userID string, sw *models.Switch) (*models.Switch, string, error) {

	sw.UserID = userID

	var uploadURL string
	if sw.HasPayload {
		storageKey, url, err := s.getPresignedPutUrl(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("error presigning payload upload: %v", err)
		}
		sw.StorageKey = storageKey
		uploadURL = url
	}

	repo := s.repomanager.Switches(s.db)
	created, err := repo.Create(ctx, sw)
	if err != nil {
		return nil, "", fmt.Errorf("error creating switch: %v", err)
	}

	return created, uploadURL, nil
}

// CheckIn resets the countdown of an untriggered switch owned by userID.
// A switch that has already triggered is terminal: the check-in is refused
// with ErrSwitchTriggered so the client can surface the state change.
func (s *SwitchService) CheckIn(ctx context.Context, userID string, switchID string) (time.Time, error) {
	repo := s.repomanager.Switches(s.db)

	lastCheckIn, err := repo.UpdateCheckIn(ctx, switchID, userID)
	if err == nil {
		return lastCheckIn, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return time.Time{}, common.ErrorInternal
	}

	// No row updated: either the switch is gone, foreign, or triggered.
	sw, getErr := repo.GetByID(ctx, switchID)
	if getErr != nil {
		return time.Time{}, common.ErrorNotFound
	}
	if sw.UserID != userID {
		return time.Time{}, common.ErrorNotFound
	}
	if sw.IsTriggered {
		return time.Time{}, common.ErrSwitchTriggered
	}
	return time.Time{}, common.ErrorNotFound
}

// Disclosure returns the payload location for a triggered switch. It is
// served without authentication: possession of the switch ID (and the key
// in the disclosure link fragment) is the recipient's capability. Before
// the trigger, or for switches without a payload, nothing is disclosed.
func (s *SwitchService) Disclosure(ctx context.Context, switchID string) (*Disclosure, error) {
	repo := s.repomanager.Switches(s.db)

	sw, err := repo.GetByID(ctx, switchID)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	if !sw.IsTriggered || !sw.HasPayload || sw.TriggeredAt == nil {
		return nil, common.ErrorNotFound
	}

	url, err := s.getPresignedGetUrl(ctx, sw.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("error presigning payload download: %v", err)
	}

	return &Disclosure{
		PayloadURL:  url,
		IV:          sw.PayloadIV,
		TriggeredAt: *sw.TriggeredAt,
	}, nil
}

// SweepDue triggers every switch whose check-in deadline has passed.
// Returns the number of switches triggered. Individual trigger failures
// are logged and skipped so one bad row cannot stall the sweep.
func (s *SwitchService) SweepDue(ctx context.Context, now time.Time) (int, error) {
	repo := s.repomanager.Switches(s.db)

	due, err := repo.SelectDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("error selecting due switches: %v", err)
	}

	triggered := 0
	for _, sw := range due {
		if err := repo.MarkTriggered(ctx, sw.ID, now); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				// lost the race to a concurrent sweep
				continue
			}
			s.logger.Error(ctx, "cannot trigger switch", "switch_id", sw.ID, "error", err)
			continue
		}
		triggered++
	}
	return triggered, nil
}
