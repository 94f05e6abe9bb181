package handlers

import (
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/service"
	"cookiejar/creator/internal/session"
)

type userResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Username      string  `json:"username"`
	AvatarURL     *string `json:"avatarUrl,omitempty"`
	Role          string  `json:"role"`
	IsCreator     bool    `json:"isCreator"`
	CreatorStatus string  `json:"creatorStatus"`
}

type profileResponse struct {
	userResponse
	CreatorBio                    *string    `json:"creatorBio"`
	YearsExperience               *string    `json:"yearsExperience"`
	PortfolioURL                  *string    `json:"portfolioUrl"`
	Twitter                       *string    `json:"twitter"`
	YouTube                       *string    `json:"youtube"`
	Itchio                        *string    `json:"itchio"`
	CreatorApplicationSubmittedAt *time.Time `json:"creatorApplicationSubmittedAt"`
	CreatorJoinedAt               *time.Time `json:"creatorJoinedAt"`
	CreatedAt                     time.Time  `json:"createdAt"`
}

func toUser(p models.Profile) userResponse {
	return userResponse{
		ID:            p.ID,
		Email:         p.Email,
		Username:      p.Username,
		AvatarURL:     p.AvatarURL,
		Role:          string(p.Role),
		IsCreator:     p.IsCreator,
		CreatorStatus: string(p.CreatorStatus),
	}
}

func toProfile(p models.Profile) profileResponse {
	return profileResponse{
		userResponse:                  toUser(p),
		CreatorBio:                    p.CreatorBio,
		YearsExperience:               p.YearsExperience,
		PortfolioURL:                  p.PortfolioURL,
		Twitter:                       p.Twitter,
		YouTube:                       p.YouTube,
		Itchio:                        p.Itchio,
		CreatorApplicationSubmittedAt: p.CreatorApplicationSubmittedAt,
		CreatorJoinedAt:               p.CreatorJoinedAt,
		CreatedAt:                     p.CreatedAt,
	}
}

type sessionResponse struct {
	Status string        `json:"status"`
	User   *userResponse `json:"user,omitempty"`
}

// toSession describes the cached claims, which may lag the stored profile
// until the session is refreshed.
func toSession(s session.Session) sessionResponse {
	if !s.Authenticated() {
		return sessionResponse{Status: s.Status.String()}
	}
	return sessionResponse{
		Status: s.Status.String(),
		User: &userResponse{
			ID:            s.Token.UserID,
			Email:         s.Token.Email,
			Username:      s.Token.Name,
			Role:          s.Token.Role,
			IsCreator:     s.Token.IsCreator,
			CreatorStatus: s.Token.CreatorStatus,
		},
	}
}

type gameResponse struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	Version              string    `json:"version"`
	AgeRating            *string   `json:"ageRating"`
	ReviewStatus         string    `json:"reviewStatus"`
	UploadStatus         string    `json:"uploadStatus"`
	IsActive             bool      `json:"isActive"`
	PlayCount            int64     `json:"playCount"`
	DownloadCount        int64     `json:"downloadCount"`
	TotalPlayTimeSeconds int64     `json:"totalPlayTimeSeconds"`
	FileSizeBytes        int64     `json:"fileSizeBytes"`
	Checksum             string    `json:"checksum,omitempty"`
	FileURL              string    `json:"fileUrl"`
	ThumbnailURL         string    `json:"thumbnailUrl"`
	CreatedAt            time.Time `json:"createdAt"`
	LastUpdatedAt        time.Time `json:"lastUpdatedAt"`
}

func toGame(g models.Game, fileURL, thumbnailURL string) gameResponse {
	return gameResponse{
		ID:                   g.ID,
		Title:                g.Title,
		Description:          g.Description,
		Category:             g.Category,
		Version:              g.Version,
		AgeRating:            g.AgeRating,
		ReviewStatus:         string(g.ReviewStatus),
		UploadStatus:         string(g.UploadStatus),
		IsActive:             g.IsActive,
		PlayCount:            g.PlayCount,
		DownloadCount:        g.DownloadCount,
		TotalPlayTimeSeconds: g.TotalPlayTimeSeconds,
		FileSizeBytes:        g.FileSizeBytes,
		Checksum:             hex.EncodeToString(g.Checksum),
		FileURL:              fileURL,
		ThumbnailURL:         thumbnailURL,
		CreatedAt:            g.CreatedAt,
		LastUpdatedAt:        g.LastUpdatedAt,
	}
}

// writeError maps service errors onto status codes. Messages meant for the
// user are passed through; anything unexpected is logged and hidden.
func (h HandlerSet) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "field": verr.Field, "message": verr.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
	case errors.Is(err, service.ErrApplicationAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": "application_already_submitted"})
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile_not_found"})
	case errors.Is(err, service.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game_not_found"})
	case errors.Is(err, service.ErrEnrollmentWriteFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enrollment_failed", "message": service.EnrollmentFailedMessage})
	case errors.Is(err, service.ErrUploadFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed", "message": service.UploadFailedMessage})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
}

// pagination reads page and perPage query parameters.
func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}
