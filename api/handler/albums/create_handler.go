package albums

import (
	"net/http"

	"github.com/anoixa/picshare/api/common"
	svcAlbums "github.com/anoixa/picshare/internal/albums"
	"github.com/gin-gonic/gin"
)

type createAlbumRequest struct {
	Title          string `json:"title" binding:"max=255"`
	Description    string `json:"description" binding:"max=2000"`
	ExpiresInHours int    `json:"expiresInHours" binding:"min=0"`
}

// CreateAlbumHandler 创建相册
func (h *Handler) CreateAlbumHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	album, err := h.svc.Create(c.Request.Context(), userID, svcAlbums.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		ExpiresInHours: req.ExpiresInHours,
	})
	if err != nil {
		h.respondServiceError(c, err, "Failed to create album")
		return
	}

	common.RespondCreated(c, "Album created successfully", album)
}
