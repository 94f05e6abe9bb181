package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"cookiejar/creator/internal/ids"
	"cookiejar/creator/internal/media/sniffer"
	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/security"
	"cookiejar/creator/internal/storage"
	"cookiejar/creator/internal/tasks"
)

var ErrUploadFailed = errors.New("game upload failed")

// UploadFailedMessage is shown to the creator when storage fails.
const UploadFailedMessage = "Failed to upload game. Please try again."

const (
	defaultGameVersion = "1.0.0"
	maxTitleLength     = 100
	maxDescription     = 5000
	maxVersionLength   = 20
)

type UploadFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

type UploadInput struct {
	CreatorID   string
	Title       string
	Description string
	Category    string
	Version     string
	AgeRating   string
	GameFile    *UploadFile
	Thumbnail   *UploadFile
}

type UploadResult struct {
	Game         models.Game
	FileURL      string
	ThumbnailURL string
}

type UploadService struct {
	games           GameStore
	store           ObjectStore
	queue           TaskQueue
	maxFileBytes    int64
	signatureSecret string
	now             clock
	log             zerolog.Logger
}

func NewUploadService(games GameStore, store ObjectStore, queue TaskQueue, maxFileBytes int64, signatureSecret string, log zerolog.Logger) *UploadService {
	return &UploadService{
		games:           games,
		store:           store,
		queue:           queue,
		maxFileBytes:    maxFileBytes,
		signatureSecret: signatureSecret,
		now:             time.Now,
		log:             log,
	}
}

// Upload stores a game pack and its thumbnail, then records the game for
// review. The row exists in the uploading state while objects are written,
// so an interrupted upload is found and removed by the cleanup task.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	game, err := s.buildGame(input)
	if err != nil {
		return UploadResult{}, err
	}
	if err := s.checkFile(input.GameFile, "gameFile", "Please upload a game file (.pck)"); err != nil {
		return UploadResult{}, err
	}
	if err := s.checkFile(input.Thumbnail, "thumbnail", "Please upload a thumbnail image"); err != nil {
		return UploadResult{}, err
	}

	pack, packHead, err := sniffer.Detect(input.GameFile.Reader)
	if err == nil {
		pack, err = sniffer.DetectPack(input.GameFile.Name, packHead)
	}
	if err != nil {
		return UploadResult{}, invalid("gameFile", "Please upload a valid .pck file")
	}
	thumb, thumbHead, err := sniffer.Detect(input.Thumbnail.Reader)
	if err == nil {
		thumb, err = sniffer.DetectImage(thumbHead)
	}
	if err != nil {
		return UploadResult{}, invalid("thumbnail", "Please upload a valid image file")
	}

	game.FileSizeBytes = input.GameFile.Size
	game.Bucket = s.store.Bucket()
	game.ObjectKey = storage.GameObjectKey(game.CreatorID, game.ID)
	game.ThumbnailKey = storage.ThumbnailKey(game.CreatorID, game.ID, thumb.Ext())
	game.Signature = security.SignResource(s.signatureSecret, game.ID, game.ObjectKey)

	if err := s.games.Create(ctx, game); err != nil {
		s.log.Error().Err(err).Str("creator_id", game.CreatorID).Msg("create game record failed")
		return UploadResult{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	log := s.log.With().Str("game_id", game.ID).Str("creator_id", game.CreatorID).Logger()

	hasher := sha256.New()
	packBody := io.TeeReader(io.MultiReader(bytes.NewReader(packHead), input.GameFile.Reader), hasher)
	if _, err := s.store.Put(ctx, game.ObjectKey, packBody, input.GameFile.Size, pack.MIME); err != nil {
		log.Error().Err(err).Msg("store game file failed")
		s.abandon(ctx, game)
		return UploadResult{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	thumbBody := io.MultiReader(bytes.NewReader(thumbHead), input.Thumbnail.Reader)
	if _, err := s.store.Put(ctx, game.ThumbnailKey, thumbBody, input.Thumbnail.Size, thumb.MIME); err != nil {
		log.Error().Err(err).Msg("store thumbnail failed")
		s.abandon(ctx, game)
		return UploadResult{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	game.Checksum = hasher.Sum(nil)
	if err := s.games.CompleteUpload(ctx, game.ID, game.Checksum); err != nil {
		log.Error().Err(err).Msg("complete upload failed")
		s.abandon(ctx, game)
		return UploadResult{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	game.UploadStatus = models.UploadStatusProcessing

	if s.queue != nil {
		if _, err := s.queue.Enqueue(ctx, tasks.Ingest(game.ID)); err != nil {
			// the hourly sweep re-enqueues games left in processing
			log.Warn().Err(err).Msg("enqueue ingest failed")
		}
	}

	log.Info().Int64("size_bytes", game.FileSizeBytes).Msg("game uploaded")
	return UploadResult{
		Game:         game,
		FileURL:      s.store.PublicURL(game.ObjectKey),
		ThumbnailURL: s.store.PublicURL(game.ThumbnailKey),
	}, nil
}

func (s *UploadService) buildGame(input UploadInput) (models.Game, error) {
	title := cleanText(input.Title)
	description := cleanText(input.Description)
	if title == "" || description == "" || input.Category == "" {
		return models.Game{}, invalid("metadata", "Please fill in all required fields")
	}
	if tooLong(title, maxTitleLength) {
		return models.Game{}, invalid("title", fmt.Sprintf("Title must be at most %d characters", maxTitleLength))
	}
	if tooLong(description, maxDescription) {
		return models.Game{}, invalid("description", fmt.Sprintf("Description must be at most %d characters", maxDescription))
	}
	if !models.IsGameCategory(input.Category) {
		return models.Game{}, invalid("category", "Please select a valid category")
	}

	version := cleanText(input.Version)
	if version == "" {
		version = defaultGameVersion
	}
	if tooLong(version, maxVersionLength) {
		return models.Game{}, invalid("version", "Version is too long")
	}

	var ageRating *string
	if input.AgeRating != "" {
		if !models.IsAgeRating(input.AgeRating) {
			return models.Game{}, invalid("ageRating", "Please select a valid age rating")
		}
		rating := input.AgeRating
		ageRating = &rating
	}

	now := s.now().UTC()
	return models.Game{
		ID:            ids.New(),
		CreatorID:     input.CreatorID,
		Title:         title,
		Description:   description,
		Category:      input.Category,
		Version:       version,
		AgeRating:     ageRating,
		ReviewStatus:  models.ReviewStatusPending,
		UploadStatus:  models.UploadStatusUploading,
		IsActive:      false,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}, nil
}

func (s *UploadService) checkFile(f *UploadFile, field, missing string) error {
	if f == nil || f.Reader == nil || f.Size <= 0 {
		return invalid(field, missing)
	}
	if f.Size > s.maxFileBytes {
		return invalid(field, fmt.Sprintf("File size must be less than %dMB", s.maxFileBytes>>20))
	}
	return nil
}

// abandon removes whatever an interrupted upload left behind. Failures are
// logged; the cleanup task catches anything missed.
func (s *UploadService) abandon(ctx context.Context, game models.Game) {
	for _, key := range []string{game.ObjectKey, game.ThumbnailKey} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("object_key", key).Msg("remove abandoned object failed")
		}
	}
	if err := s.games.Delete(ctx, game.ID); err != nil {
		s.log.Warn().Err(err).Str("game_id", game.ID).Msg("remove abandoned game failed")
	}
}
