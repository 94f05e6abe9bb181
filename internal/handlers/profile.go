package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/middleware"
	"cookiejar/creator/internal/service"
)

type settingsRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Twitter  *string `json:"twitter"`
	YouTube  *string `json:"youtube"`
	Itchio   *string `json:"itchio"`
}

func (h HandlerSet) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), middleware.CurrentSession(c).Claims.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": toProfile(profile)})
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.profiles.UpdateSettings(c.Request.Context(), middleware.CurrentSession(c).Claims.UserID, service.SettingsInput{
		Username: req.Username,
		Bio:      req.Bio,
		Twitter:  req.Twitter,
		YouTube:  req.YouTube,
		Itchio:   req.Itchio,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": toProfile(profile)})
}
