package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/middleware"
	"cookiejar/creator/internal/models"
	"cookiejar/creator/internal/service"
)

// multipartOverhead covers form fields and part headers on top of the two
// files.
const multipartOverhead = 1 << 20

func (h HandlerSet) ListGames(c *gin.Context) {
	limit, offset := pagination(c)
	filter := models.GameFilter{
		Query:        c.Query("q"),
		ReviewStatus: models.ReviewStatus(c.Query("status")),
	}

	views, err := h.games.List(c.Request.Context(), middleware.CurrentSession(c).Claims.UserID, filter, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	items := make([]gameResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toGame(v.Game, v.FileURL, v.ThumbnailURL))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type statsResponse struct {
	TotalGames           int   `json:"totalGames"`
	ActiveGames          int   `json:"activeGames"`
	PendingReview        int   `json:"pendingReview"`
	TotalPlays           int64 `json:"totalPlays"`
	TotalDownloads       int64 `json:"totalDownloads"`
	TotalPlayTimeSeconds int64 `json:"totalPlayTimeSeconds"`
}

func (h HandlerSet) GameStats(c *gin.Context) {
	stats, err := h.games.Stats(c.Request.Context(), middleware.CurrentSession(c).Claims.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse(stats))
}

type gameUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Version     *string `json:"version"`
	AgeRating   *string `json:"ageRating"`
}

func (h HandlerSet) UpdateGame(c *gin.Context) {
	var req gameUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.games.Update(c.Request.Context(), middleware.CurrentSession(c).Claims.UserID, c.Param("id"), service.GameUpdateInput(req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": toGame(view.Game, view.FileURL, view.ThumbnailURL)})
}

// UploadGame accepts a multipart form with the game metadata, a gameFile
// part holding the .pck pack and a thumbnail image part.
func (h HandlerSet) UploadGame(c *gin.Context) {
	maxFile := h.cfg.Upload.MaxFileBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*maxFile+multipartOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "validation_failed",
				"field":   "gameFile",
				"message": fmt.Sprintf("File size must be less than %dMB", maxFile>>20),
			})
			return
		}
		badRequest(c, err)
		return
	}
	defer form.RemoveAll()

	gameFile, closeGame, err := openPart(form, "gameFile")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer closeGame()
	thumbnail, closeThumb, err := openPart(form, "thumbnail")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer closeThumb()

	result, err := h.uploads.Upload(c.Request.Context(), service.UploadInput{
		CreatorID:   middleware.CurrentSession(c).Claims.UserID,
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		Category:    formValue(form, "category"),
		Version:     formValue(form, "version"),
		AgeRating:   formValue(form, "ageRating"),
		GameFile:    gameFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"game": toGame(result.Game, result.FileURL, result.ThumbnailURL)})
}

// openPart opens the first file under name. A missing part is not an
// error; the upload service reports it with a form message.
func openPart(form *multipart.Form, name string) (*service.UploadFile, func(), error) {
	headers := form.File[name]
	if len(headers) == 0 {
		return nil, func() {}, nil
	}
	header := headers[0]
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("open %s: %w", name, err)
	}
	return &service.UploadFile{Name: header.Filename, Size: header.Size, Reader: f}, func() { f.Close() }, nil
}

func formValue(form *multipart.Form, name string) string {
	if values := form.Value[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}
