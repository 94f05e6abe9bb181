package service

import (
	"context"
	"errors"
	"fmt"

	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/repository"
)

type ProfileService struct {
	profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

type SettingsInput struct {
	Username *string
	Bio      *string
	Twitter  *string
	YouTube  *string
	Itchio   *string
}

// UpdateSettings edits the owner-editable fields. Nil fields are left alone
// and an empty optional field is cleared. Email is never part of the update.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID string, input SettingsInput) (models.Profile, error) {
	settings := models.ProfileSettings{
		Username: settingsText(input.Username),
		Bio:      settingsText(input.Bio),
		Twitter:  settingsText(input.Twitter),
		YouTube:  settingsText(input.YouTube),
		Itchio:   settingsText(input.Itchio),
	}
	if settings.Username != nil {
		if *settings.Username == "" {
			return models.Profile{}, invalid("username", "Username is required")
		}
		if tooLong(*settings.Username, maxUsernameLength) {
			return models.Profile{}, invalid("username", fmt.Sprintf("Username must be at most %d characters", maxUsernameLength))
		}
	}
	if settings.Bio != nil && tooLong(*settings.Bio, maxBioLength) {
		return models.Profile{}, invalid("bio", fmt.Sprintf("Bio must be at most %d characters", maxBioLength))
	}

	profile, err := s.profiles.UpdateSettings(ctx, userID, settings)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, fmt.Errorf("update settings: %w", err)
	}
	return profile, nil
}

// ListApplications returns creators in the given state for review.
func (s *ProfileService) ListApplications(ctx context.Context, status models.CreatorStatus, limit, offset int) ([]models.Profile, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown creator status")
	}
	profiles, err := s.profiles.ListByStatus(ctx, status, clampLimit(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return profiles, nil
}

func settingsText(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := cleanText(*s)
	return &cleaned
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return min(limit, maxPageSize)
}
