package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cookiejar/creator/internal/models"
)

var (
	ErrProfileNotFound             = errors.New("profile not found")
	ErrEmailTaken                  = errors.New("email already registered")
	ErrApplicationAlreadySubmitted = errors.New("creator application already submitted")
)

const uniqueViolation = "23505"

const profileColumns = `
	id, email, password_hash, username, avatar_url, role, is_creator, creator_status,
	creator_bio, years_experience, portfolio_url, twitter, youtube, itchio,
	creator_application_submitted_at, creator_joined_at, created_at, updated_at
`

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, profile models.Profile) error {
	const query = `
		INSERT INTO profiles (
			id, email, password_hash, username, avatar_url, role, is_creator, creator_status,
			creator_joined_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Email,
		profile.PasswordHash,
		profile.Username,
		profile.AvatarURL,
		profile.Role,
		profile.IsCreator,
		profile.CreatorStatus,
		profile.CreatorJoinedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(email) = LOWER($1)`
	return scanProfile(r.pool.QueryRow(ctx, query, email))
}

// BeginEnrollment marks a plain user as a creator in the "user" state. Profiles
// that are already creators are left untouched.
func (r *ProfileRepository) BeginEnrollment(ctx context.Context, id string) (models.Profile, error) {
	const update = `
		UPDATE profiles
		SET is_creator = TRUE,
		    creator_status = 'user',
		    creator_joined_at = COALESCE(creator_joined_at, NOW()),
		    updated_at = NOW()
		WHERE id = $1 AND is_creator = FALSE
	`
	if _, err := r.pool.Exec(ctx, update, id); err != nil {
		return models.Profile{}, err
	}
	return r.GetByID(ctx, id)
}

// SubmitApplication moves a profile from "user" to "pending". The WHERE clause
// makes the transition one-way: a profile already pending, approved or
// rejected is never rewritten.
func (r *ProfileRepository) SubmitApplication(ctx context.Context, id string, app models.CreatorApplication) (models.Profile, error) {
	const update = `
		UPDATE profiles
		SET creator_bio = $2,
		    years_experience = $3,
		    portfolio_url = $4,
		    twitter = $5,
		    youtube = $6,
		    itchio = $7,
		    is_creator = TRUE,
		    creator_status = 'pending',
		    creator_application_submitted_at = NOW(),
		    creator_joined_at = COALESCE(creator_joined_at, NOW()),
		    updated_at = NOW()
		WHERE id = $1 AND (is_creator = FALSE OR creator_status = 'user')
	`
	cmd, err := r.pool.Exec(ctx, update, id,
		app.Bio,
		app.YearsExperience,
		app.PortfolioURL,
		app.Twitter,
		app.YouTube,
		app.Itchio,
	)
	if err != nil {
		return models.Profile{}, err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return models.Profile{}, err
		}
		return models.Profile{}, ErrApplicationAlreadySubmitted
	}
	return r.GetByID(ctx, id)
}

// UpdateSettings applies the non-nil fields. An empty string clears an
// optional field; the username can only be replaced.
func (r *ProfileRepository) UpdateSettings(ctx context.Context, id string, settings models.ProfileSettings) (models.Profile, error) {
	const update = `
		UPDATE profiles
		SET username = COALESCE(NULLIF($2::text, ''), username),
		    creator_bio = CASE WHEN $3::text IS NULL THEN creator_bio ELSE NULLIF($3::text, '') END,
		    twitter = CASE WHEN $4::text IS NULL THEN twitter ELSE NULLIF($4::text, '') END,
		    youtube = CASE WHEN $5::text IS NULL THEN youtube ELSE NULLIF($5::text, '') END,
		    itchio = CASE WHEN $6::text IS NULL THEN itchio ELSE NULLIF($6::text, '') END,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, update, id,
		settings.Username,
		settings.Bio,
		settings.Twitter,
		settings.YouTube,
		settings.Itchio,
	)
	if err != nil {
		return models.Profile{}, err
	}
	if cmd.RowsAffected() == 0 {
		return models.Profile{}, ErrProfileNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ProfileRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	const update = `
		UPDATE profiles SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, update, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ListByStatus returns creators in the given state, oldest application first.
func (r *ProfileRepository) ListByStatus(ctx context.Context, status models.CreatorStatus, limit, offset int) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM profiles
		WHERE is_creator = TRUE AND creator_status = $1
		ORDER BY creator_application_submitted_at ASC NULLS LAST, created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var profile models.Profile
	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.PasswordHash,
		&profile.Username,
		&profile.AvatarURL,
		&profile.Role,
		&profile.IsCreator,
		&profile.CreatorStatus,
		&profile.CreatorBio,
		&profile.YearsExperience,
		&profile.PortfolioURL,
		&profile.Twitter,
		&profile.YouTube,
		&profile.Itchio,
		&profile.CreatorApplicationSubmittedAt,
		&profile.CreatorJoinedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	return profile, nil
}
