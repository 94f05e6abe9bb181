package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cookiejar/creator/internal/models"
)

var ErrGameNotFound = errors.New("game not found")

const gameColumns = `
	id, creator_id, title, description, category, version, age_rating,
	review_status, upload_status, is_active, play_count, download_count,
	total_play_time_seconds, file_size_bytes, bucket, object_key, thumbnail_key,
	checksum, signature, created_at, last_updated_at
`

type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

func (r *GameRepository) Create(ctx context.Context, game models.Game) error {
	const query = `
		INSERT INTO games (
			id, creator_id, title, description, category, version, age_rating,
			review_status, upload_status, is_active, play_count, download_count,
			total_play_time_seconds, file_size_bytes, bucket, object_key, thumbnail_key,
			checksum, signature, created_at, last_updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		game.ID,
		game.CreatorID,
		game.Title,
		game.Description,
		game.Category,
		game.Version,
		game.AgeRating,
		game.ReviewStatus,
		game.UploadStatus,
		game.IsActive,
		game.PlayCount,
		game.DownloadCount,
		game.TotalPlayTimeSeconds,
		game.FileSizeBytes,
		game.Bucket,
		game.ObjectKey,
		game.ThumbnailKey,
		game.Checksum,
		game.Signature,
	)
	return err
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	return scanGame(r.pool.QueryRow(ctx, query, id))
}

// ListByCreator returns the creator's games, newest first. Query matches title
// or description case-insensitively.
func (r *GameRepository) ListByCreator(ctx context.Context, creatorID string, filter models.GameFilter, limit, offset int) ([]models.Game, error) {
	var (
		where = []string{"creator_id = $1"}
		args  = []any{creatorID}
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.ReviewStatus != "" {
		args = append(args, filter.ReviewStatus)
		where = append(where, fmt.Sprintf("review_status = $%d", len(args)))
	}
	args = append(args, limit, offset)

	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC
		LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	return r.queryGames(ctx, query, args...)
}

// Update applies the non-nil fields of the update to a game the creator owns.
func (r *GameRepository) Update(ctx context.Context, id, creatorID string, update models.GameUpdate) (models.Game, error) {
	const query = `
		UPDATE games
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    category = COALESCE($5, category),
		    version = COALESCE($6, version),
		    age_rating = COALESCE($7, age_rating),
		    last_updated_at = NOW()
		WHERE id = $1 AND creator_id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, creatorID,
		update.Title,
		update.Description,
		update.Category,
		update.Version,
		update.AgeRating,
	)
	if err != nil {
		return models.Game{}, err
	}
	if cmd.RowsAffected() == 0 {
		return models.Game{}, ErrGameNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *GameRepository) UpdateUploadStatus(ctx context.Context, id string, status models.UploadStatus, sizeBytes *int64) error {
	const query = `
		UPDATE games
		SET upload_status = $2,
		    file_size_bytes = COALESCE($3, file_size_bytes),
		    last_updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status, sizeBytes)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// CompleteUpload records the pack checksum once both objects are stored and
// hands the game to the worker.
func (r *GameRepository) CompleteUpload(ctx context.Context, id string, checksum []byte) error {
	const query = `
		UPDATE games
		SET upload_status = 'processing',
		    checksum = $2,
		    last_updated_at = NOW()
		WHERE id = $1 AND upload_status = 'uploading'
	`
	cmd, err := r.pool.Exec(ctx, query, id, checksum)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// ListStaleUploads returns games still in the given upload state that were
// created before the cutoff.
func (r *GameRepository) ListStaleUploads(ctx context.Context, status models.UploadStatus, before time.Time, limit int) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE upload_status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3`
	return r.queryGames(ctx, query, status, before, limit)
}

func (r *GameRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *GameRepository) queryGames(ctx context.Context, query string, args ...any) ([]models.Game, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func scanGame(row pgx.Row) (models.Game, error) {
	var game models.Game
	if err := row.Scan(
		&game.ID,
		&game.CreatorID,
		&game.Title,
		&game.Description,
		&game.Category,
		&game.Version,
		&game.AgeRating,
		&game.ReviewStatus,
		&game.UploadStatus,
		&game.IsActive,
		&game.PlayCount,
		&game.DownloadCount,
		&game.TotalPlayTimeSeconds,
		&game.FileSizeBytes,
		&game.Bucket,
		&game.ObjectKey,
		&game.ThumbnailKey,
		&game.Checksum,
		&game.Signature,
		&game.CreatedAt,
		&game.LastUpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Game{}, ErrGameNotFound
		}
		return models.Game{}, err
	}
	return game, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
