package service

import (
	"context"
	"io"
	"time"

	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/storage"
)

// ProfileStore is the subset of repository.ProfileRepository the services use.
type ProfileStore interface {
	Create(ctx context.Context, profile models.Profile) error
	GetByID(ctx context.Context, id string) (models.Profile, error)
	FindByEmail(ctx context.Context, email string) (models.Profile, error)
	BeginEnrollment(ctx context.Context, id string) (models.Profile, error)
	SubmitApplication(ctx context.Context, id string, app models.CreatorApplication) (models.Profile, error)
	UpdateSettings(ctx context.Context, id string, settings models.ProfileSettings) (models.Profile, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	ListByStatus(ctx context.Context, status models.CreatorStatus, limit, offset int) ([]models.Profile, error)
}

// GameStore is the subset of repository.GameRepository the services use.
type GameStore interface {
	Create(ctx context.Context, game models.Game) error
	GetByID(ctx context.Context, id string) (models.Game, error)
	ListByCreator(ctx context.Context, creatorID string, filter models.GameFilter, limit, offset int) ([]models.Game, error)
	Update(ctx context.Context, id, creatorID string, update models.GameUpdate) (models.Game, error)
	CompleteUpload(ctx context.Context, id string, checksum []byte) error
	Delete(ctx context.Context, id string) error
}

// ObjectStore is the subset of storage.ObjectStore the services use.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.ObjectInfo, error)
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// TaskQueue hands work to the background worker.
type TaskQueue interface {
	Enqueue(ctx context.Context, values map[string]any) (string, error)
}

type clock func() time.Time
