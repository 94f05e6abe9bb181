package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cookiejar/creator/internal/models"
)

// AdminListApplications lists creators by status, pending by default.
func (h HandlerSet) AdminListApplications(c *gin.Context) {
	status := models.CreatorStatus(c.DefaultQuery("status", string(models.CreatorStatusPending)))
	limit, offset := pagination(c)

	profiles, err := h.profiles.ListApplications(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	items := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, toProfile(p))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
