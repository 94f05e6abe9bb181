package service

import (
	"context"
	"errors"
	"fmt"

	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/repository"
)

var ErrGameNotFound = errors.New("game not found")

type GameService struct {
	games GameStore
	store ObjectStore
}

func NewGameService(games GameStore, store ObjectStore) *GameService {
	return &GameService{games: games, store: store}
}

type GameView struct {
	models.Game
	FileURL      string
	ThumbnailURL string
}

func (s *GameService) view(game models.Game) GameView {
	return GameView{
		Game:         game,
		FileURL:      s.store.PublicURL(game.ObjectKey),
		ThumbnailURL: s.store.PublicURL(game.ThumbnailKey),
	}
}

// List returns the creator's games, newest first.
func (s *GameService) List(ctx context.Context, creatorID string, filter models.GameFilter, limit, offset int) ([]GameView, error) {
	if filter.ReviewStatus != "" && !filter.ReviewStatus.Valid() {
		return nil, invalid("status", "unknown review status")
	}
	filter.Query = cleanText(filter.Query)

	games, err := s.games.ListByCreator(ctx, creatorID, filter, clampLimit(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	views := make([]GameView, 0, len(games))
	for _, game := range games {
		views = append(views, s.view(game))
	}
	return views, nil
}

type GameUpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Version     *string
	AgeRating   *string
}

// Update edits game metadata. Only the owning creator can update a game; any
// other caller sees ErrGameNotFound.
func (s *GameService) Update(ctx context.Context, creatorID, gameID string, input GameUpdateInput) (GameView, error) {
	update, err := buildGameUpdate(input)
	if err != nil {
		return GameView{}, err
	}

	game, err := s.games.Update(ctx, gameID, creatorID, update)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return GameView{}, ErrGameNotFound
		}
		return GameView{}, fmt.Errorf("update game: %w", err)
	}
	return s.view(game), nil
}

func buildGameUpdate(input GameUpdateInput) (models.GameUpdate, error) {
	var update models.GameUpdate
	if input.Title != nil {
		title := cleanText(*input.Title)
		if title == "" || tooLong(title, maxTitleLength) {
			return update, invalid("title", fmt.Sprintf("Title must be 1 to %d characters", maxTitleLength))
		}
		update.Title = &title
	}
	if input.Description != nil {
		description := cleanText(*input.Description)
		if description == "" || tooLong(description, maxDescription) {
			return update, invalid("description", fmt.Sprintf("Description must be 1 to %d characters", maxDescription))
		}
		update.Description = &description
	}
	if input.Category != nil {
		if !models.IsGameCategory(*input.Category) {
			return update, invalid("category", "Please select a valid category")
		}
		update.Category = input.Category
	}
	if input.Version != nil {
		version := cleanText(*input.Version)
		if version == "" || tooLong(version, maxVersionLength) {
			return update, invalid("version", fmt.Sprintf("Version must be 1 to %d characters", maxVersionLength))
		}
		update.Version = &version
	}
	if input.AgeRating != nil {
		if !models.IsAgeRating(*input.AgeRating) {
			return update, invalid("ageRating", "Please select a valid age rating")
		}
		update.AgeRating = input.AgeRating
	}
	return update, nil
}

type CreatorStats struct {
	TotalGames           int
	ActiveGames          int
	PendingReview        int
	TotalPlays           int64
	TotalDownloads       int64
	TotalPlayTimeSeconds int64
}

const statsScanLimit = 1000

// Stats totals the creator's counters for the overview page.
func (s *GameService) Stats(ctx context.Context, creatorID string) (CreatorStats, error) {
	games, err := s.games.ListByCreator(ctx, creatorID, models.GameFilter{}, statsScanLimit, 0)
	if err != nil {
		return CreatorStats{}, fmt.Errorf("list games: %w", err)
	}
	var stats CreatorStats
	for _, game := range games {
		stats.TotalGames++
		if game.IsActive {
			stats.ActiveGames++
		}
		if game.ReviewStatus == models.ReviewStatusPending {
			stats.PendingReview++
		}
		stats.TotalPlays += game.PlayCount
		stats.TotalDownloads += game.DownloadCount
		stats.TotalPlayTimeSeconds += game.TotalPlayTimeSeconds
	}
	return stats, nil
}
