package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/repository"
)

var (
	ErrApplicationAlreadySubmitted = errors.New("creator application already submitted")
	// ErrEnrollmentWriteFailed wraps any storage failure while submitting.
	// The submission is not retried.
	ErrEnrollmentWriteFailed = errors.New("enrollment write failed")
)

// EnrollmentFailedMessage is shown to the applicant when the write fails.
const EnrollmentFailedMessage = "Failed to submit application. Please try again."

var ExperienceLevels = []string{"0-1", "1-3", "3-5", "5+"}

const maxBioLength = 1000

type ApplicationInput struct {
	Bio              string
	YearsExperience  string
	PortfolioURL     string
	Twitter          string
	YouTube          string
	Itchio           string
	AgreedToTerms    bool
	AgreedToReview   bool
	AgreedToOriginal bool
}

// EnrollmentService owns every write to creator_status.
type EnrollmentService struct {
	profiles ProfileStore
	log      zerolog.Logger
}

func NewEnrollmentService(profiles ProfileStore, log zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{profiles: profiles, log: log}
}

// Begin turns a plain user into a creator awaiting their application.
// Existing creators are returned unchanged.
func (s *EnrollmentService) Begin(ctx context.Context, userID string) (models.Profile, error) {
	profile, err := s.profiles.BeginEnrollment(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, fmt.Errorf("begin enrollment: %w", err)
	}
	return profile, nil
}

// Submit validates the application and moves the profile from user to
// pending. A profile that has left the user state is never moved back.
func (s *EnrollmentService) Submit(ctx context.Context, userID string, input ApplicationInput) (models.Profile, error) {
	app, err := buildApplication(input)
	if err != nil {
		return models.Profile{}, err
	}

	profile, err := s.profiles.SubmitApplication(ctx, userID, app)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrApplicationAlreadySubmitted):
		return models.Profile{}, ErrApplicationAlreadySubmitted
	case errors.Is(err, repository.ErrProfileNotFound):
		return models.Profile{}, ErrProfileNotFound
	default:
		s.log.Error().Err(err).Str("user_id", userID).Msg("creator application write failed")
		return models.Profile{}, fmt.Errorf("%w: %w", ErrEnrollmentWriteFailed, err)
	}

	s.log.Info().Str("user_id", userID).Str("years_experience", app.YearsExperience).Msg("creator application submitted")
	return profile, nil
}

func buildApplication(input ApplicationInput) (models.CreatorApplication, error) {
	if !slices.Contains(ExperienceLevels, input.YearsExperience) {
		return models.CreatorApplication{}, invalid("yearsExperience", "Please select your experience level")
	}
	if !input.AgreedToTerms || !input.AgreedToReview || !input.AgreedToOriginal {
		return models.CreatorApplication{}, invalid("agreements", "Please agree to all terms to continue")
	}

	app := models.CreatorApplication{
		Bio:             optionalText(&input.Bio),
		YearsExperience: input.YearsExperience,
		PortfolioURL:    optionalText(&input.PortfolioURL),
		Twitter:         optionalText(&input.Twitter),
		YouTube:         optionalText(&input.YouTube),
		Itchio:          optionalText(&input.Itchio),
	}
	if app.Bio != nil && tooLong(*app.Bio, maxBioLength) {
		return models.CreatorApplication{}, invalid("bio", fmt.Sprintf("Bio must be at most %d characters", maxBioLength))
	}
	if app.PortfolioURL != nil && !validURL(*app.PortfolioURL) {
		return models.CreatorApplication{}, invalid("portfolioUrl", "Please enter a valid portfolio URL")
	}
	return app, nil
}
