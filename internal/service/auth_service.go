package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cookiejar/creator/internal/ids"
	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/repository"
	"cookiejar/creator/internal/security"
	"cookiejar/creator/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrProfileNotFound    = errors.New("profile not found")
)

const maxUsernameLength = 32

type PasswordHasher func(password string) ([]byte, error)

type AuthService struct {
	profiles          ProfileStore
	sessions          *session.Provider
	passwordMinLength int
	hash              PasswordHasher
	now               clock
	log               zerolog.Logger
}

func NewAuthService(profiles ProfileStore, sessions *session.Provider, passwordMinLength int, log zerolog.Logger) *AuthService {
	return &AuthService{
		profiles:          profiles,
		sessions:          sessions,
		passwordMinLength: passwordMinLength,
		hash:              security.HashPassword,
		now:               time.Now,
		log:               log,
	}
}

// WithPasswordHasher swaps the hashing function, mainly for tests.
func (s *AuthService) WithPasswordHasher(h PasswordHasher) *AuthService {
	s.hash = h
	return s
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Creator  bool
}

type AuthResult struct {
	Token   string
	Claims  *security.SessionClaims
	Profile models.Profile
}

// Register creates a profile and signs it in. Creator sign-ups start in the
// "user" state and still have to submit an application.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return AuthResult{}, err
	}
	username := cleanText(input.Username)
	if username == "" {
		return AuthResult{}, invalid("username", "Username is required")
	}
	if tooLong(username, maxUsernameLength) {
		return AuthResult{}, invalid("username", fmt.Sprintf("Username must be at most %d characters", maxUsernameLength))
	}
	if err := s.checkPassword(input.Password); err != nil {
		return AuthResult{}, err
	}

	passwordHash, err := s.hash(input.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	profile := models.Profile{
		ID:            ids.New(),
		Email:         email,
		PasswordHash:  passwordHash,
		Username:      username,
		Role:          models.UserRoleUser,
		IsCreator:     input.Creator,
		CreatorStatus: models.CreatorStatusUser,
	}
	if input.Creator {
		joined := s.now().UTC()
		profile.CreatorJoinedAt = &joined
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info().Str("user_id", profile.ID).Bool("creator", profile.IsCreator).Msg("profile registered")
	return s.issue(profile)
}

type LoginInput struct {
	Email    string
	Password string
}

// Login checks credentials and signs the profile in. Non-creators get a
// session too; the dashboard gate decides what they may see.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find profile: %w", err)
	}

	ok, err := security.VerifyPassword(input.Password, profile.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", profile.ID).Msg("stored password hash unreadable")
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(profile)
}

// Refresh re-reads the profile and re-signs the session under the same id,
// picking up any creator status change made since sign-in.
func (s *AuthService) Refresh(ctx context.Context, claims *security.SessionClaims) (AuthResult, error) {
	if claims == nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	profile, err := s.profiles.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return AuthResult{}, ErrProfileNotFound
		}
		return AuthResult{}, fmt.Errorf("load profile: %w", err)
	}
	return s.reissue(claims, profile)
}

func (s *AuthService) Logout(ctx context.Context, claims *security.SessionClaims) error {
	return s.sessions.Revoke(ctx, claims)
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return invalid("confirmPassword", "Passwords do not match.")
	}
	if err := s.checkPassword(input.NewPassword); err != nil {
		return err
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("load profile: %w", err)
	}
	ok, err := security.VerifyPassword(input.CurrentPassword, profile.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	passwordHash, err := s.hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.profiles.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *AuthService) checkPassword(password string) error {
	if len(password) < s.passwordMinLength {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters.", s.passwordMinLength))
	}
	return nil
}

func (s *AuthService) issue(profile models.Profile) (AuthResult, error) {
	token, claims, err := s.sessions.Issue(profile)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue session: %w", err)
	}
	return AuthResult{Token: token, Claims: claims, Profile: profile}, nil
}

func (s *AuthService) reissue(current *security.SessionClaims, profile models.Profile) (AuthResult, error) {
	token, claims, err := s.sessions.Reissue(current, profile)
	if err != nil {
		return AuthResult{}, fmt.Errorf("reissue session: %w", err)
	}
	return AuthResult{Token: token, Claims: claims, Profile: profile}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "Please enter a valid email address")
	}
	return email, nil
}
