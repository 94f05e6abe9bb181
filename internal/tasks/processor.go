package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/repository"
	"cookiejar/creator/internal/storage"
)

type GameStore interface {
	GetByID(ctx context.Context, id string) (models.Game, error)
	UpdateUploadStatus(ctx context.Context, id string, status models.UploadStatus, sizeBytes *int64) error
	ListStaleUploads(ctx context.Context, status models.UploadStatus, before time.Time, limit int) ([]models.Game, error)
	Delete(ctx context.Context, id string) error
}

type ObjectStore interface {
	Stat(ctx context.Context, key string) (storage.ObjectInfo, error)
	Remove(ctx context.Context, key string) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, values map[string]any) (string, error)
}

type Options struct {
	// StaleUploadAge is how long a game may sit in uploading or failed
	// before cleanup removes it.
	StaleUploadAge time.Duration
	// SweepAge is how long a game may sit in processing before it is
	// re-enqueued for ingest.
	SweepAge  time.Duration
	BatchSize int
}

type Processor struct {
	games  GameStore
	store  ObjectStore
	queue  Enqueuer
	opts   Options
	now    func() time.Time
	logger zerolog.Logger
}

func NewProcessor(games GameStore, store ObjectStore, queue Enqueuer, opts Options, logger zerolog.Logger) *Processor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.SweepAge <= 0 {
		opts.SweepAge = 15 * time.Minute
	}
	return &Processor{
		games:  games,
		store:  store,
		queue:  queue,
		opts:   opts,
		now:    time.Now,
		logger: logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	payload, err := Decode(msg.Values)
	if err != nil {
		p.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed task")
		return nil
	}

	switch payload.Type {
	case TypeIngest:
		return p.handleIngest(ctx, payload)
	case TypeCleanup:
		return p.handleCleanup(ctx)
	case TypeSweep:
		return p.handleSweep(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

// handleIngest confirms both objects of a processing game exist and marks it
// ready, or failed when an object is missing. Storage errors are returned so
// the entry stays pending and is retried.
func (p *Processor) handleIngest(ctx context.Context, payload Payload) error {
	log := p.logger.With().Str("game_id", payload.GameID).Logger()

	game, err := p.games.GetByID(ctx, payload.GameID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			log.Info().Msg("ingest for deleted game skipped")
			return nil
		}
		return fmt.Errorf("load game: %w", err)
	}
	if game.UploadStatus != models.UploadStatusProcessing {
		log.Debug().Str("upload_status", string(game.UploadStatus)).Msg("ingest already settled")
		return nil
	}

	pack, err := p.store.Stat(ctx, game.ObjectKey)
	if err == nil {
		_, err = p.store.Stat(ctx, game.ThumbnailKey)
	}
	if errors.Is(err, storage.ErrObjectNotFound) {
		log.Warn().Msg("uploaded object missing, marking failed")
		return p.games.UpdateUploadStatus(ctx, game.ID, models.UploadStatusFailed, nil)
	}
	if err != nil {
		return fmt.Errorf("stat objects: %w", err)
	}

	if pack.Size != game.FileSizeBytes {
		log.Warn().Int64("recorded", game.FileSizeBytes).Int64("stored", pack.Size).Msg("pack size differs from upload")
	}
	if err := p.games.UpdateUploadStatus(ctx, game.ID, models.UploadStatusReady, &pack.Size); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	log.Info().Int64("size_bytes", pack.Size).Msg("game ready")
	return nil
}

// handleCleanup removes games that never finished uploading, or failed, and
// their objects.
func (p *Processor) handleCleanup(ctx context.Context) error {
	cutoff := p.now().Add(-p.opts.StaleUploadAge)
	removed := 0
	for _, status := range []models.UploadStatus{models.UploadStatusUploading, models.UploadStatusFailed} {
		games, err := p.games.ListStaleUploads(ctx, status, cutoff, p.opts.BatchSize)
		if err != nil {
			return fmt.Errorf("list %s uploads: %w", status, err)
		}
		for _, game := range games {
			if err := p.removeGame(ctx, game); err != nil {
				p.logger.Error().Err(err).Str("game_id", game.ID).Msg("cleanup failed")
				continue
			}
			removed++
		}
	}
	p.logger.Info().Int("removed", removed).Msg("stale upload cleanup finished")
	return nil
}

func (p *Processor) removeGame(ctx context.Context, game models.Game) error {
	for _, key := range []string{game.ObjectKey, game.ThumbnailKey} {
		if err := p.store.Remove(ctx, key); err != nil {
			return err
		}
	}
	if err := p.games.Delete(ctx, game.ID); err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		return err
	}
	return nil
}

// handleSweep re-enqueues games whose ingest entry was lost.
func (p *Processor) handleSweep(ctx context.Context) error {
	games, err := p.games.ListStaleUploads(ctx, models.UploadStatusProcessing, p.now().Add(-p.opts.SweepAge), p.opts.BatchSize)
	if err != nil {
		return fmt.Errorf("list processing uploads: %w", err)
	}
	for _, game := range games {
		if _, err := p.queue.Enqueue(ctx, Ingest(game.ID)); err != nil {
			return fmt.Errorf("re-enqueue %s: %w", game.ID, err)
		}
	}
	if len(games) > 0 {
		p.logger.Info().Int("count", len(games)).Msg("re-enqueued processing games")
	}
	return nil
}
